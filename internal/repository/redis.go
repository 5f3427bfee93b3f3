package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Torrentov/calories-count-bot/internal/config"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Connect создает клиент Redis и проверяет соединение.
// Пустой адрес означает работу без Redis: возвращается nil клиент без ошибки.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis at %s: %w", cfg.Address, err)
	}

	return client, nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
