// main is the entry point of the Students API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Connect to (and set up) the SQLite database
//  4. Register all HTTP routes and middleware
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"

	"github.com/franklin-edu/students-api/internal/config"
	"github.com/franklin-edu/students-api/internal/http/handlers/student"
	"github.com/franklin-edu/students-api/internal/http/middleware"
	"github.com/franklin-edu/students-api/internal/storage/sqlite"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	// MustLoad reads the YAML config and fatals if anything is wrong.
	// If this returns, config is guaranteed valid.
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Structured logging writes key=value pairs rather than plain strings,
	// making logs easy to filter/search in tools like Loki or Datadog.
	log := setupLogger(cfg.Env)

	log.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage (Database) ──────────────────────────────────
	// sqlite.New opens the SQLite file and creates the students table.
	// We hold the result as the storage.Storage INTERFACE, not *sqlite.SQLite,
	// so swapping the backend later only requires changing this one line.
	storage, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1) // non-zero exit code signals failure to the OS / CI system
	}

	log.Info("storage initialised",
		slog.String("path", cfg.StoragePath))

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	// The handler functions (student.New, student.GetByID, etc.) are
	// FACTORIES — they receive `storage` and return the actual handler.
	//
	// Route table:
	//   POST   /api/students               → create a new student
	//   GET    /api/students               → list all students
	//   GET    /api/students/random        → get a random student
	//   GET    /api/students/search/{name} → find a student by name (case-insensitive)
	//   GET    /api/students/{id}          → get one student by ID
	//   PUT    /api/students/{id}          → overwrite a student's fields
	//   DELETE /api/students/{id}          → delete a student
	//
	// ServeMux prefers literal segments over wildcards, so /random and
	// /search/{name} never collide with /{id}.
	router := http.NewServeMux()

	router.HandleFunc("POST "+student.BasePath, student.New(storage))
	router.HandleFunc("GET "+student.BasePath, student.GetList(storage))
	router.HandleFunc("GET "+student.BasePath+"/random", student.GetRandom(storage))
	router.HandleFunc("GET "+student.BasePath+"/search/{name}", student.GetByName(storage))
	router.HandleFunc("GET "+student.BasePath+"/{id}", student.GetByID(storage))
	router.HandleFunc("PUT "+student.BasePath+"/{id}", student.Update(storage))
	router.HandleFunc("DELETE "+student.BasePath+"/{id}", student.Delete(storage))

	// ── 5. Wrap Middleware ────────────────────────────────────────────────
	// Innermost first: the router, then request logging, then request-id
	// assignment, then panic recovery and CORS on the outside.
	var handler http.Handler = router
	handler = middleware.Logger(log)(handler)
	handler = middleware.RequestID(handler)
	handler = handlers.RecoveryHandler()(handler)
	handler = handlers.CORS(
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(handler)

	// ── 6. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr, // e.g. "localhost:8082"
		Handler: handler,             // every request goes through the chain

		// Timeouts guard against slow-client attacks.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 7. Start Server in a Goroutine ────────────────────────────────────
	// ListenAndServe blocks forever, so it runs in its own goroutine and
	// the graceful-shutdown code below keeps control of main.
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected — we don't want to log it as an error.
		if err := server.ListenAndServe(); err != nil &&
			err != http.ErrServerClosed {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 8. Wait for Shutdown Signal ───────────────────────────────────────
	// Buffered so we don't miss the signal if main is briefly busy.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	// Give in-flight requests up to 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
//
//	JSON logs are easy to ingest by log aggregators (Loki, CloudWatch, etc.)
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo, // INFO and above in production
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug, // more verbose in staging
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug, // all levels in development
			}),
		)
	}
}
