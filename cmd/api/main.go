package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Marga-Ghale/taska-backend/internal/api"
	"github.com/Marga-Ghale/taska-backend/internal/config"
	"github.com/Marga-Ghale/taska-backend/internal/cron"
	"github.com/Marga-Ghale/taska-backend/internal/db"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/seed"
	"github.com/Marga-Ghale/taska-backend/internal/service"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/socket"
)

var errNoDatabaseURL = errors.New("DATABASE_URL is not set")

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Storage: PostgreSQL, or in-memory outside production
	// ============================================
	repos, pg := openRepositories(cfg)
	if pg != nil {
		defer pg.Close()
	}
	databaseStatus := "memory"
	if pg != nil {
		databaseStatus = "connected"
	}

	// ============================================
	// Session cache: Redis (optional)
	// ============================================
	var sessions session.Store = session.NewMemoryStore()
	cacheStatus := "memory"
	if cfg.RedisURL != "" {
		redisDB, err := db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v (using in-process session cache)", err)
		} else {
			defer redisDB.Close()
			sessions = redisDB
			cacheStatus = "connected"
		}
	}

	// ============================================
	// WebSocket hub and services
	// ============================================
	var services *service.Services
	hub := socket.NewHub(func(userID, room string) bool {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return services.Project.CanAccessRoom(ctx, userID, room)
	})
	go hub.Run()
	defer hub.Stop()

	services = service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		Sessions:    sessions,
		Broadcaster: socket.NewBroadcaster(hub),
	})
	log.Println("All services initialized")

	if cfg.SeedData && !cfg.IsProduction() {
		if err := seed.SeedData(context.Background(), repos); err != nil {
			log.Printf("Seeding failed: %v", err)
		}
	}

	// ============================================
	// Cron Scheduler
	// ============================================
	scheduler := cron.NewScheduler(services.Task, repos.UserRepo)
	if err := scheduler.Start(cfg.OverdueCheckSpec); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// ============================================
	// HTTP server
	// ============================================
	router := api.NewRouter(api.RouterDeps{
		Config:         cfg,
		Services:       services,
		Hub:            hub,
		DatabaseStatus: databaseStatus,
		CacheStatus:    cacheStatus,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// openRepositories runs migrations and connects to PostgreSQL. Outside
// production a failure falls back to in-memory repositories.
func openRepositories(cfg *config.Config) (*repository.Repositories, *db.PostgresDB) {
	fallback := func(err error) (*repository.Repositories, *db.PostgresDB) {
		if cfg.IsProduction() {
			log.Fatalf("Database unavailable: %v", err)
		}
		log.Printf("Database unavailable: %v (using in-memory repositories)", err)
		return repository.NewRepositories(), nil
	}

	if cfg.DatabaseURL == "" {
		return fallback(errNoDatabaseURL)
	}

	log.Println("Running database migrations...")
	if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return fallback(err)
	}

	pg, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		return fallback(err)
	}
	log.Println("Repositories initialized")
	return repository.NewPgRepositories(pg.Pool, pg.DB), pg
}
