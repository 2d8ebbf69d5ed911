// Copyright (c) 2026 Stefan Kovacs.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/skovacs/surveyd/auth"
	"github.com/skovacs/surveyd/cliparse"
	"github.com/skovacs/surveyd/db"
	"github.com/skovacs/surveyd/middleware"
	"github.com/skovacs/surveyd/router"
	"github.com/skovacs/surveyd/session"
	"github.com/skovacs/surveyd/store"
	"github.com/skovacs/surveyd/vignettes"
)

func main() {
	// Load .env if present; real env variables win
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(db.Dialect(cfg.DatabaseType), cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables) and seed study config
	if err := db.CreateSchema(dbConn, db.Dialect(cfg.DatabaseType)); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "dialect", cfg.DatabaseType)

	// Load the vignette case set
	cases, err := vignettes.Load(cfg.VignettesFile)
	if err != nil {
		slog.Error("failed to load vignettes", "error", err, "file", cfg.VignettesFile)
		os.Exit(1)
	}
	slog.Info("Vignettes loaded", "count", len(cases))

	st := store.New(dbConn, db.Dialect(cfg.DatabaseType))
	sessions := session.NewManager(cfg.MaxResponses)

	// The admin key is deterministic from the salt; print it once at startup
	// so the dashboard operator can copy it.
	slog.Info("Admin key", "key", auth.GenerateAdminKey(cfg.AdminKeySalt))

	// Create router
	mux := router.NewRouter(st, sessions, cases, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
