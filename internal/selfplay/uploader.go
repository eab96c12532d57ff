package selfplay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/middleware"
	"github.com/lk16/reversi/internal/models"
)

const (
	uploadTimeout = 30 * time.Second
)

var errUnauthorized = errors.New("unauthorized")

// Uploader submits finished games to the server and keeps the worker registered.
type Uploader struct {
	// config contains details on how to connect to the server
	config *config.UploadConfig

	hostname  string
	gitCommit string

	// verbose is whether to log requests as curl commands
	verbose bool

	client *http.Client

	mu       sync.Mutex
	workerID string
}

func NewUploader(config *config.UploadConfig, hostname, gitCommit string, verbose bool) *Uploader {
	return &Uploader{
		config:    config,
		hostname:  hostname,
		gitCommit: gitCommit,
		verbose:   verbose,
		client:    &http.Client{Timeout: uploadTimeout},
	}
}

func (u *Uploader) logVerbose(format string, args ...any) {
	if u.verbose {
		log.Printf(format, args...)
	}
}

func (u *Uploader) logRequestAsCurl(request *http.Request, body []byte) {
	if !u.verbose {
		return
	}

	var builder strings.Builder
	builder.WriteString("curl -X ")
	builder.WriteString(request.Method)
	builder.WriteString(" '")
	builder.WriteString(request.URL.String())
	builder.WriteString("'")

	for key, values := range request.Header {
		for _, value := range values {
			builder.WriteString(" -H '")
			builder.WriteString(strings.ToLower(key))
			builder.WriteString(": ")
			builder.WriteString(value)
			builder.WriteString("'")
		}
	}

	if len(body) > 0 {
		fmt.Fprintf(&builder, " -d @- # %d bytes", len(body))
	}

	u.logVerbose("%s", builder.String())
}

// WorkerID returns the id assigned by the server, empty before registering.
func (u *Uploader) WorkerID() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.workerID
}

// do sends one request and decodes a JSON response into result when it is not nil.
func (u *Uploader) do(ctx context.Context, method, path string, payload, result any, workerID string) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
	}

	request, err := http.NewRequestWithContext(ctx, method, u.config.ServerURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set(middleware.TokenHeader, u.config.Token)
	if workerID != "" {
		request.Header.Set(middleware.WorkerHeader, workerID)
	}

	u.logRequestAsCurl(request, body)

	response, err := u.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	u.logVerbose("Response: %v", response.Status)

	if response.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return fmt.Errorf("server returned unexpected status %v: %s", response.Status, strings.TrimSpace(string(detail)))
	}

	if result == nil {
		return nil
	}

	if err = json.NewDecoder(response.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Register asks the server for a new worker id.
func (u *Uploader) Register(ctx context.Context) error {
	payload := models.RegisterRequest{
		Hostname:  u.hostname,
		GitCommit: u.gitCommit,
	}

	var parsed models.RegisterResponse
	if err := u.do(ctx, http.MethodPost, "/api/selfplay/workers/register", payload, &parsed, ""); err != nil {
		return fmt.Errorf("failed to register worker: %w", err)
	}

	u.mu.Lock()
	u.workerID = parsed.WorkerID
	u.mu.Unlock()

	u.logVerbose("Registered as worker %s", parsed.WorkerID)
	return nil
}

// withWorker sends a request that carries the worker id. It registers first when no id is
// known and registers again once if the server no longer recognizes the id.
func (u *Uploader) withWorker(ctx context.Context, method, path string, payload, result any) error {
	for attempt := 0; ; attempt++ {
		workerID := u.WorkerID()
		if workerID == "" {
			if err := u.Register(ctx); err != nil {
				return err
			}
			workerID = u.WorkerID()
		}

		err := u.do(ctx, method, path, payload, result, workerID)
		if !errors.Is(err, errUnauthorized) || attempt > 0 {
			return err
		}

		u.logVerbose("Unauthorized, requesting new worker ID and trying again")
		u.mu.Lock()
		u.workerID = ""
		u.mu.Unlock()
	}
}

// Heartbeat reports the games and samples produced since the previous heartbeat.
func (u *Uploader) Heartbeat(ctx context.Context, games, samples int) error {
	payload := models.HeartbeatRequest{Games: games, Samples: samples}
	if err := u.withWorker(ctx, http.MethodPost, "/api/selfplay/workers/heartbeat", payload, nil); err != nil {
		return fmt.Errorf("failed to send heartbeat: %w", err)
	}
	return nil
}

// SubmitGames uploads games in batches within the server limits and returns how many
// games the server stored.
func (u *Uploader) SubmitGames(ctx context.Context, games []models.GameRecord) (int, error) {
	stored := 0

	for _, batch := range splitUploads(games, config.MaxGamesPerUpload, config.MaxSamplesPerUpload) {
		var parsed struct {
			Stored int `json:"stored"`
		}

		payload := models.GamesPayload{Games: batch}
		if err := u.withWorker(ctx, http.MethodPost, "/api/selfplay/games", payload, &parsed); err != nil {
			return stored, fmt.Errorf("failed to submit games: %w", err)
		}

		stored += parsed.Stored
	}

	return stored, nil
}

// splitUploads groups games into batches of at most maxGames games and maxSamples samples.
// A single game above maxSamples gets a batch of its own.
func splitUploads(games []models.GameRecord, maxGames, maxSamples int) [][]models.GameRecord {
	var batches [][]models.GameRecord
	var current []models.GameRecord
	samples := 0

	for _, game := range games {
		n := len(game.Samples)
		if len(current) > 0 && (len(current) == maxGames || samples+n > maxSamples) {
			batches = append(batches, current)
			current = nil
			samples = 0
		}
		current = append(current, game)
		samples += n
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// Progress counts games and samples between two heartbeats.
type Progress struct {
	games   atomic.Int64
	samples atomic.Int64
}

func (p *Progress) Add(games, samples int) {
	p.games.Add(int64(games))
	p.samples.Add(int64(samples))
}

// Drain returns the counts and resets them.
func (p *Progress) Drain() (games, samples int) {
	return int(p.games.Swap(0)), int(p.samples.Swap(0))
}

// HeartbeatLoop sends a heartbeat every interval until ctx is done. Counts of failed
// heartbeats are carried over to the next one.
func (u *Uploader) HeartbeatLoop(ctx context.Context, interval time.Duration, progress *Progress) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		games, samples := progress.Drain()
		if err := u.Heartbeat(ctx, games, samples); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error sending heartbeat: %v", err)
			progress.Add(games, samples)
		}
	}
}
