package middleware

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// WorkerHeader identifies a registered self-play worker.
const WorkerHeader = "x-worker-id"

// Logging middleware that logs route, status code, response time and the calling worker if any.
func Logging(output io.Writer) fiber.Handler {
	return logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path} ${worker}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
		Output:     output,
		CustomTags: map[string]logger.LogFunc{
			"latency": func(output logger.Buffer, _ *fiber.Ctx, data *logger.Data, _ string) (int, error) {
				latency := float64(data.Stop.Sub(data.Start).Nanoseconds()) / float64(time.Millisecond)
				return fmt.Fprintf(output, "%6.1fms", latency)
			},
			"worker": func(output logger.Buffer, c *fiber.Ctx, _ *logger.Data, _ string) (int, error) {
				workerID := c.Get(WorkerHeader)
				if workerID == "" {
					return 0, nil
				}
				return fmt.Fprintf(output, "| worker=%s", workerID)
			},
		},
	})
}
