// cmd/historian/main.go runs the asynchronous historian: it pops action
// records from the Redis queue the server pushes to and persists them to
// PostgreSQL, purging rooms that have gone idle.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/unluckysevens/internal/cache"
	"github.com/jason-s-yu/unluckysevens/internal/config"
	"github.com/jason-s-yu/unluckysevens/internal/database"
	"github.com/jason-s-yu/unluckysevens/internal/historian"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.RedisAddr == "" {
		log.Fatal("REDIS_ADDR is required for the historian")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("%v", err)
	}

	rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer rdb.Close()

	svc := historian.New(rdb, database.NewActionLog(pool), historian.Options{
		Queue:      cfg.QueueName,
		BatchSize:  cfg.HistorianBatchSize,
		FlushDelay: cfg.HistorianFlush,
		RoomIdle:   cfg.RoomIdle,
	})
	svc.Run(ctx)
}
