/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Statera budget engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load .env
  2. Initialize the SQLite store and in-memory collections
  3. Materialize due recurring occurrences
  4. Optionally connect the Google Cloud Storage backup
  5. Configure the HTTP router
  6. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: statera.db)
           Use ":memory:" for an in-memory database

ENVIRONMENT (.env supported):
  BACKUP_GCS_BUCKET   bucket holding the backup object; empty disables sync
  BACKUP_GCS_OBJECT   object name (default: statera-backup.json)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Flush a final backup when cloud sync is active
  4. Close the database connection

SEE ALSO:
  - api/server.go: Router configuration
  - backup/coordinator.go: Connect-time conflict protocol
  - store/sqlite/sqlite.go: Local storage
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/statera/budget-engine/api"
	"github.com/statera/budget-engine/backup"
	"github.com/statera/budget-engine/backup/gcs"
	"github.com/statera/budget-engine/internal/logger"
	"github.com/statera/budget-engine/ledger"
	"github.com/statera/budget-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "statera.db", "SQLite database path")
	flag.Parse()

	log := logger.New()

	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	// Local storage
	persist, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", *dbPath).Msg("failed to open database")
	}
	defer persist.Close()

	ctx := context.Background()

	// Engine state
	store := ledger.NewStore(persist, log)
	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load operations")
	}
	cols := ledger.NewCollections(persist, log)
	if err := cols.Load(ctx, store.List()); err != nil {
		log.Fatal().Err(err).Msg("failed to load collections")
	}

	// Materialize recurring occurrences that came due while offline.
	res := ledger.Materialize(cols.RecurringRules(), store.List(), ledger.Today())
	if len(res.Added) > 0 {
		store.Prepend(ctx, res.Added...)
		log.Info().Int("count", len(res.Added)).Msg("materialized recurring operations")
	}
	if res.Changed {
		cols.SetRecurringRules(ctx, res.Rules)
	}

	handler := api.NewHandler(store, cols, log)

	// Optional cloud backup
	bucket := os.Getenv("BACKUP_GCS_BUCKET")
	if bucket != "" {
		object := os.Getenv("BACKUP_GCS_OBJECT")
		if object == "" {
			object = "statera-backup.json"
		}

		svc, err := gcs.New(ctx, bucket)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", bucket).Msg("failed to create storage client")
		}
		defer svc.Close()

		coord := backup.NewCoordinator(svc, store, cols, persist, object, log)
		autosave := backup.NewAutosaver(coord, backup.DefaultQuietPeriod, log)
		store.SetOnChange(autosave.Trigger)
		cols.SetOnChange(autosave.Trigger)
		defer autosave.Stop()

		conflict, err := coord.Connect(ctx)
		if err != nil {
			log.Error().Err(err).Msg("cloud backup connect failed, continuing offline")
		} else if conflict != nil {
			log.Warn().
				Int("localOperations", conflict.LocalOperations).
				Int("remoteOperations", conflict.RemoteOperations).
				Time("remoteModified", conflict.RemoteModified).
				Msg("backup conflict pending, resolve via /api/backup/resolve")
		}

		handler.Backup = coord
		handler.Autosave = autosave
	}

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", *port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	if handler.Autosave != nil {
		if err := handler.Autosave.Flush(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("final backup failed")
		}
	}

	log.Info().Msg("server stopped")
}
