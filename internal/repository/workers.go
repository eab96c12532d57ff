package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/services"
	"github.com/redis/go-redis/v9"
)

const (
	WorkersKey = "selfplay_workers"
	WorkersTTL = 300 * time.Second
)

var ErrWorkerNotFound = errors.New("worker not found")

// WorkerRepository tracks self-play workers in a Redis hash that expires when all of them go quiet.
type WorkerRepository struct {
	services *services.Services
}

func NewWorkerRepository(c *fiber.Ctx) *WorkerRepository {
	return &WorkerRepository{
		services: c.Locals("services").(*services.Services), //nolint: errcheck
	}
}

func NewWorkerRepositoryFromServices(services *services.Services) *WorkerRepository {
	return &WorkerRepository{
		services: services,
	}
}

// RegisterWorker registers a new worker and returns its ID
func (repo *WorkerRepository) RegisterWorker(ctx context.Context, req models.RegisterRequest) (models.RegisterResponse, error) {
	workerID := uuid.New().String()

	stats := models.WorkerStats{
		ID:         workerID,
		Hostname:   req.Hostname,
		GitCommit:  req.GitCommit,
		LastActive: time.Now(),
	}

	if err := repo.store(ctx, stats); err != nil {
		return models.RegisterResponse{}, err
	}

	return models.RegisterResponse{WorkerID: workerID}, nil
}

// Heartbeat marks the worker as active and adds the reported progress to its counters.
func (repo *WorkerRepository) Heartbeat(ctx context.Context, workerID string, req models.HeartbeatRequest) error {
	stats, err := repo.GetWorker(ctx, workerID)
	if err != nil {
		return err
	}

	stats.LastActive = time.Now()
	stats.GamesPlayed += req.Games
	stats.Samples += req.Samples

	return repo.store(ctx, stats)
}

// GetWorker retrieves statistics for a specific worker
func (repo *WorkerRepository) GetWorker(ctx context.Context, workerID string) (models.WorkerStats, error) {
	jsonData, err := repo.services.Redis.HGet(ctx, WorkersKey, workerID).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.WorkerStats{}, ErrWorkerNotFound
	}

	if err != nil {
		return models.WorkerStats{}, fmt.Errorf("error getting worker: %w", err)
	}

	var stats models.WorkerStats
	if err = json.Unmarshal(jsonData, &stats); err != nil {
		return models.WorkerStats{}, fmt.Errorf("error unmarshaling worker stats: %w", err)
	}

	return stats, nil
}

// ListWorkers retrieves statistics for all workers, most recently active first.
func (repo *WorkerRepository) ListWorkers(ctx context.Context) (models.WorkersResponse, error) {
	workers, err := repo.services.Redis.HGetAll(ctx, WorkersKey).Result()
	if err != nil {
		return models.WorkersResponse{}, fmt.Errorf("error getting workers: %w", err)
	}

	cutoff := time.Now().Add(-WorkersTTL)

	stats := make([]models.WorkerStats, 0, len(workers))
	for _, jsonData := range workers {
		var worker models.WorkerStats
		if err = json.Unmarshal([]byte(jsonData), &worker); err != nil {
			return models.WorkersResponse{}, fmt.Errorf("error unmarshaling worker stats: %w", err)
		}

		// The hash TTL is shared, so stale workers linger while others keep it alive.
		if worker.LastActive.Before(cutoff) {
			continue
		}
		stats = append(stats, worker)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].LastActive.After(stats[j].LastActive)
	})

	return models.WorkersResponse{
		ActiveWorkers: len(stats),
		Workers:       stats,
	}, nil
}

func (repo *WorkerRepository) store(ctx context.Context, stats models.WorkerStats) error {
	jsonData, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("error marshaling worker stats: %w", err)
	}

	redisConn := repo.services.Redis

	// Store in Redis hash and reset TTL
	if err = redisConn.HSet(ctx, WorkersKey, stats.ID, jsonData).Err(); err != nil {
		return fmt.Errorf("error storing worker: %w", err)
	}

	if err = redisConn.Expire(ctx, WorkersKey, WorkersTTL).Err(); err != nil {
		return fmt.Errorf("error setting TTL: %w", err)
	}

	return nil
}
