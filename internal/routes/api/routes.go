package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/middleware"
)

// SetupRoutes sets up the API routes.
func SetupRoutes(app *fiber.App, cfg *config.ServerConfig) {
	apiGroup := app.Group("/api", middleware.AuthOrToken(cfg))

	// Position routes
	apiGroup.Post("/positions/analyze", AnalyzePosition)
	apiGroup.Post("/positions/move", PlayMove)

	// Self-play routes
	apiGroup.Post("/selfplay/games", SubmitGames)
	apiGroup.Get("/selfplay/stats", GetSelfPlayStats)

	// Worker routes
	apiGroup.Post("/selfplay/workers/register", RegisterWorker)
	apiGroup.Post("/selfplay/workers/heartbeat", Heartbeat)
	apiGroup.Get("/selfplay/workers", GetWorkers)
}
