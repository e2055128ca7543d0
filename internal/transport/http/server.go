package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"reelshelf/internal/cache"
	"reelshelf/internal/config"
	"reelshelf/internal/database"
	"reelshelf/internal/handler"
	"reelshelf/internal/omdb"
	"reelshelf/internal/queue"
	"reelshelf/internal/redis"
	"reelshelf/internal/repository"
	"reelshelf/internal/service"
	"reelshelf/internal/worker"
)

// Run wires every layer together and serves until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStartup()
	if err := redisClient.Ping(startupCtx); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	followRepo := repository.NewFollowRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Caches and queue, sharing one Redis connection pool
	catalogCache := cache.NewCatalogCache(redisClient.Client)
	statsCache := cache.NewStatsCache(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Services
	omdbClient := omdb.NewClient(cfg.OMDBAPIKey, cfg.OMDBBaseURL)
	catalogService := service.NewCatalogService(omdbClient, catalogCache)
	userService := service.NewUserService(userRepo, followRepo)
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	followService := service.NewFollowService(followRepo, userRepo)
	movieService := service.NewMovieService(movieRepo, catalogService, statsCache, publisher)

	// Background poster mirroring
	posterService, err := service.NewPosterService(context.Background(), cfg)
	if err != nil {
		// The library still works without mirroring; posters just keep
		// pointing at their original third-party URLs.
		log.Printf("[Server] Poster mirroring disabled: %v", err)
	}

	var manager *worker.Manager
	if posterService != nil {
		workerHandler := worker.NewHandler(posterService, movieRepo)
		manager = worker.NewManager(consumer, workerHandler, worker.DefaultManagerConfig())
		if err := manager.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
		defer manager.Stop()
	}

	// Handlers
	validate := validator.New()
	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService, validate),
		UserHandler:    handler.NewUserHandler(userService, validate),
		FollowHandler:  handler.NewFollowHandler(followService),
		MovieHandler:   handler.NewMovieHandler(movieService, validate),
		CatalogHandler: handler.NewCatalogHandler(catalogService),
		JWTSecret:      cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
