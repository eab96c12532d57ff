// Package tests contains helpers shared by the route tests.
package tests

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal"
	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/services"
)

const (
	TestToken    = "test-token"
	TestUser     = "test-user"
	TestPassword = "test-password"
)

// TestConfig returns a server config that needs no external services.
func TestConfig() *config.ServerConfig {
	return &config.ServerConfig{
		ServerHost:        "127.0.0.1",
		ServerPort:        "0",
		BasicAuthUsername: TestUser,
		BasicAuthPassword: TestPassword,
		Token:             TestToken,
		Prefork:           false,
	}
}

// NewTestApp builds the app without database connections. Routes that reach
// Postgres or Redis are covered by the integration tests of the repository package.
func NewTestApp(t *testing.T) *fiber.App {
	t.Helper()

	app := internal.BuildApp(TestConfig(), &services.Services{})

	t.Cleanup(func() {
		_ = app.Shutdown()
	})

	return app
}
