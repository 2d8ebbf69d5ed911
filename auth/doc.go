// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin key generation and validation.

# Admin Keys

Admin keys use HMAC-SHA256 to create a deterministic, verifiable key:

	adminKey := auth.GenerateAdminKey(salt)
	err := auth.ValidateAdminKey(adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's
deterministic, the same salt always produces the same key. This allows
validation without storing the key anywhere: the server prints the key at
startup and the dashboard operator presents it in the X-Admin-Key header.

Validation uses constant-time comparison. There is exactly one admin
identity per deployment; rotating the salt rotates the key.
*/
package auth
