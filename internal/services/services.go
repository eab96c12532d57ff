package services

import (
	"github.com/jmoiron/sqlx"
	"github.com/lk16/reversi/internal/config"
	"github.com/redis/go-redis/v9"
)

// Services contains the connections to the external services.
type Services struct {
	Postgres *sqlx.DB
	Redis    *redis.Client
}

func InitServices(cfg *config.ServerConfig) (*Services, error) {
	// Initialize database
	postgres, err := InitPostgres(cfg.PostgresURL)
	if err != nil {
		return nil, err
	}

	// Initialize Redis
	redis, err := InitRedis(cfg.RedisURL)
	if err != nil {
		_ = postgres.Close()
		return nil, err
	}

	return &Services{
		Postgres: postgres,
		Redis:    redis,
	}, nil
}

// Close closes all connections, it is safe to call on partially initialized services.
func (s *Services) Close() error {
	var err error

	if s.Redis != nil {
		err = s.Redis.Close()
	}

	if s.Postgres != nil {
		if pgErr := s.Postgres.Close(); pgErr != nil && err == nil {
			err = pgErr
		}
	}

	return err
}
