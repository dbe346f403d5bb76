package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"whiteboard/internal/config"
	"whiteboard/internal/presence"
	"whiteboard/internal/routers"
	"whiteboard/internal/session"
)

// Indirections for tests.
var (
	listenAndServe = http.ListenAndServe
	exitFunc       = defaultExit
	exit           = os.Exit
)

func defaultExit(err error) {
	log.Printf("whiteboard-svc failed: %v", err)
	exit(1)
}

func run(_ context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg := config.Load()

	// Presence mirror is optional: without Redis the service still runs,
	// rooms just stay invisible to the rest of the platform.
	var pub *presence.Publisher
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pub = presence.NewPublisher(rdb, logger)
		logger.Info("presence mirror enabled",
			zap.String("redisAddr", cfg.RedisAddr),
			zap.String("instanceId", pub.InstanceID()))
	}

	hub := session.NewHub()

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	r.Mount("/", routers.New(logger, cfg, hub, pub))

	log.Printf("whiteboard-svc listening on %s", cfg.ListenAddr)
	return listenAndServe(cfg.ListenAddr, r)
}

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}
