package version

import (
	"os/exec"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/reversi/internal/models"
)

// Commit can be set at build time with -ldflags "-X .../version.Commit=...".
var Commit string

var loadVersion = sync.OnceValue(func() models.VersionResponse {
	if Commit != "" {
		return models.VersionResponse{Commit: Commit}
	}

	output, err := exec.Command("git", "rev-parse", "HEAD").Output()
	if err != nil {
		return models.VersionResponse{Commit: "unknown"}
	}
	return models.VersionResponse{Commit: strings.TrimSpace(string(output))}
})

func SetupRoutes(app *fiber.App) {
	versionGroup := app.Group("/version")
	versionGroup.Get("/", versionHandler)
}

func versionHandler(c *fiber.Ctx) error {
	return c.JSON(loadVersion())
}

// GitCommit returns the commit the binary was built from, or "unknown".
func GitCommit() string {
	return loadVersion().Commit
}
