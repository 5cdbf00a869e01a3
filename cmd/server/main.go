// cmd/server/main.go
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

	"github.com/jason-s-yu/unluckysevens/internal/auth"
	"github.com/jason-s-yu/unluckysevens/internal/cache"
	"github.com/jason-s-yu/unluckysevens/internal/config"
	"github.com/jason-s-yu/unluckysevens/internal/database"
	"github.com/jason-s-yu/unluckysevens/internal/game"
	"github.com/jason-s-yu/unluckysevens/internal/handlers"
	"github.com/jason-s-yu/unluckysevens/internal/room"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var signer *auth.Signer
	if cfg.PrivateKeyPath != "" {
		signer, err = auth.NewSignerFromPath(cfg.PrivateKeyPath, cfg.PublicKeyPath, cfg.TokenExpire)
	} else {
		logger.Warn("no JWT key paths set, seat tokens will not survive a restart")
		signer, err = auth.NewSigner(cfg.TokenExpire)
	}
	if err != nil {
		logger.Fatalf("failed to set up token signer: %v", err)
	}

	opts := room.Options{
		Engine:      &game.Engine{HandSize: cfg.HandSize, MatchTarget: cfg.MatchTarget},
		Logger:      logger,
		TurnSeconds: cfg.TurnSeconds,
		TurnTimer:   cfg.TurnTimer,
	}
	serverOpts := handlers.Options{
		Signer:           signer,
		Logger:           logger,
		ActionsPerSecond: cfg.ActionsPerSecond,
		ActionBurst:      cfg.ActionBurst,
	}

	switch cfg.Storage {
	case "postgres":
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer pool.Close()
		if err := database.EnsureSchema(ctx, pool); err != nil {
			logger.Fatalf("%v", err)
		}
		opts.Store = database.NewRoomStore(pool)
		serverOpts.History = database.NewActionLog(pool)
		logger.Info("rooms stored in postgres")
	default:
		opts.Store = room.NewMemoryStore()
		logger.Info("rooms stored in memory")
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer rdb.Close()
		opts.Notifier = cache.NewNotifier(rdb, cfg.ChannelPfx)
		opts.Recorder = cache.NewRecorder(rdb, cfg.QueueName)
		logger.Infof("room updates fan out through redis at %s", cfg.RedisAddr)
	}

	rooms := room.NewService(opts)
	defer rooms.Close()

	serverOpts.Rooms = rooms
	srv := handlers.NewServer(serverOpts)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.Infof("Running on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
