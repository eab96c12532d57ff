package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/middleware"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/repository"
)

// SubmitGames handles submission of finished self-play games.
func SubmitGames(c *fiber.Ctx) error {
	var payload models.GamesPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	repo := repository.NewSelfPlayRepository(c)
	stored, err := repo.SubmitGames(c.Context(), payload)
	if err != nil {
		slog.Error("failed to store self-play games", "error", err, "worker", c.Get(middleware.WorkerHeader))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"stored": stored,
	})
}

// GetSelfPlayStats returns the aggregated self-play counters.
func GetSelfPlayStats(c *fiber.Ctx) error {
	repo := repository.NewSelfPlayRepository(c)
	stats, err := repo.GetStats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
