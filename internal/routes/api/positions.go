package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/othello"
)

// StatusForError maps engine errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, othello.ErrGameFinished):
		return fiber.StatusConflict
	case errors.Is(err, othello.ErrInvalidMove),
		errors.Is(err, othello.ErrInvalidBoardSize),
		errors.Is(err, othello.ErrInvalidPlayer),
		errors.Is(err, othello.ErrInvalidWinStyle),
		errors.Is(err, othello.ErrOutOfBounds):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// AnalyzePosition returns the legal moves and the status of a position.
func AnalyzePosition(c *fiber.Ctx) error {
	var payload models.PositionPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	game, err := payload.Game()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(models.Analyze(game))
}

// PlayMove plays a move and returns the analysis of the resulting position.
func PlayMove(c *fiber.Ctx) error {
	var payload models.MovePayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	analysis, err := models.PlayMove(payload)
	if err != nil {
		status := StatusForError(err)

		// A position that cannot be parsed is always the client's fault.
		if status == fiber.StatusInternalServerError {
			status = fiber.StatusBadRequest
		}

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(analysis)
}
