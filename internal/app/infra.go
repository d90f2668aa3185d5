package app

import (
	"log/slog"

	"github.com/DEFRA/assurance-frontend-sub000/internal/config"
	"github.com/DEFRA/assurance-frontend-sub000/internal/redis"
)

type Infra struct {
	Redis *redis.Client
}

func setupInfra(cfg config.Config, log *slog.Logger) (*Infra, error) {
	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	log.Info("redis ready", "addr", cfg.RedisAddr)

	return &Infra{Redis: redisClient}, nil
}
