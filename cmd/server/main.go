package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/playmatatu/ropesim/internal/api"
	"github.com/playmatatu/ropesim/internal/config"
	"github.com/playmatatu/ropesim/internal/database"
	"github.com/playmatatu/ropesim/internal/migrations"
	"github.com/playmatatu/ropesim/internal/redis"
	"github.com/playmatatu/ropesim/internal/sim"
	"github.com/playmatatu/ropesim/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Postgres and Redis are optional in development; the simulation runs
	// without history or snapshot caching.
	var db *sqlx.DB
	if conn, err := database.Connect(cfg.DatabaseURL); err != nil {
		if cfg.Environment == "production" {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Printf("[DB] Database unavailable, session history disabled: %v", err)
	} else {
		db = conn
		defer db.Close()

		if os.Getenv("MIGRATE_ON_START") == "true" {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, os.Getenv("MIGRATIONS_DIR")); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
	}

	var rdb *goredis.Client
	if client, err := redis.Connect(cfg.RedisURL); err != nil {
		if cfg.Environment == "production" {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("[REDIS] Redis unavailable, snapshot cache disabled: %v", err)
	} else {
		rdb = client
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := sim.NewManager(db, rdb, cfg)
	ws.SetManager(manager)
	if rdb != nil {
		ws.SetRedisClient(rdb)
		ws.StartEventSubscriber(ctx)
	}
	manager.StartTicker(ctx)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, db, manager, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting ropesim server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Close remaining sessions so their final state is stored
	for _, s := range manager.List() {
		if err := manager.Remove(s.ID); err != nil {
			log.Printf("[SIM] Failed to close session %s: %v", s.ID, err)
		}
	}
}
