package main

import (
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/AvelDev/easyfood/cliparse"
	"github.com/AvelDev/easyfood/db"
	"github.com/AvelDev/easyfood/handlers"
	"github.com/AvelDev/easyfood/models"
	"github.com/AvelDev/easyfood/router"
	"github.com/AvelDev/easyfood/scheduler"
	"github.com/AvelDev/easyfood/watch"
)

func main() {
	var err error

	// Load .env if present; real deployments use real env variables
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database (postgres or sqlite per config)
	driver := "postgres"
	if cfg.DatabaseType == "sqlite" {
		driver = "sqlite"
	}
	dbConn, err := sql.Open(driver, cfg.DatabaseURL)
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

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Seed the bootstrap admin account
	if cfg.AdminEmail != "" {
		if err := seedAdmin(dbConn, cfg.AdminEmail, cfg.AdminName); err != nil {
			slog.Error("admin seed failed", "error", err)
			os.Exit(1)
		}
	}

	// Snapshot hub and auto-close scheduler
	hub := watch.NewHub(watch.NewDBLoader(dbConn))
	closer := scheduler.New(handlers.AutoCloseFunc(dbConn, hub))
	defer closer.CancelAll()

	// Re-arm timers for polls that were open when the process last stopped.
	// Past deadlines close immediately.
	if err := reconcileOpenPolls(dbConn, closer); err != nil {
		slog.Error("poll reconciliation failed", "error", err)
		os.Exit(1)
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, closer, hub)

	// Create server
	server := http.Server{
		Handler: mux,
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

// seedAdmin ensures an admin account exists for the configured email.
// An existing account is promoted rather than duplicated.
func seedAdmin(dbConn *sql.DB, email, name string) error {
	if name == "" {
		name = "Admin"
	}

	var id string
	err := dbConn.QueryRow(`SELECT id FROM app_user WHERE email = $1`, email).Scan(&id)
	if err == sql.ErrNoRows {
		id = uuid.NewString()
		_, err = dbConn.Exec(`
			INSERT INTO app_user (id, display_name, email, role, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, id, name, email, models.RoleAdmin, time.Now())
		if err != nil {
			return err
		}
		slog.Info("Admin account seeded", "user_id", id, "email", email)
		return nil
	}
	if err != nil {
		return err
	}

	_, err = dbConn.Exec(`UPDATE app_user SET role = $1 WHERE id = $2`, models.RoleAdmin, id)
	if err != nil {
		return err
	}
	slog.Info("Admin account present", "user_id", id, "email", email)
	return nil
}

// reconcileOpenPolls schedules auto-close for every poll still open in the
// store. Polls whose deadline passed while the process was down close on
// the spot.
func reconcileOpenPolls(dbConn *sql.DB, closer *scheduler.AutoCloser) error {
	rows, err := dbConn.Query(`SELECT id, voting_ends_at FROM poll WHERE closed = FALSE`)
	if err != nil {
		return err
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var pollID string
		var votingEndsAt time.Time
		if err := rows.Scan(&pollID, &votingEndsAt); err != nil {
			return err
		}
		closer.Schedule(pollID, votingEndsAt)
		count++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	slog.Info("Open polls reconciled", "count", count)
	return nil
}
