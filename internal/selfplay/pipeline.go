package selfplay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/store"
)

const (
	finalUploadTimeout = time.Minute

	// maxPendingUploads bounds the games kept while the server is unreachable.
	maxPendingUploads = 20 * config.MaxGamesPerUpload
)

// UploadResult reports one upload attempt.
type UploadResult struct {
	Games  int
	Stored int
	Err    error
}

// Summary counts what a pipeline consumed.
type Summary struct {
	Games    int
	Samples  int
	Errors   int
	Files    []string
	Uploaded int
	Dropped  int
}

// Pipeline consumes game results. Every field is optional.
type Pipeline struct {
	Sink *store.Sink

	Uploader *Uploader

	// UploadEvery is the number of games buffered before an upload.
	UploadEvery int

	Progress *Progress

	// Events receives every result, flushed file and upload result. Sends never block,
	// events are dropped when the channel is full.
	Events chan<- any

	pending []models.GameRecord
	summary Summary
}

func (p *Pipeline) emit(event any) {
	if p.Events == nil {
		return
	}

	select {
	case p.Events <- event:
	default:
	}
}

// Consume reads results until the channel is closed, then flushes the sink and uploads
// the remaining games. A sink error stops consumption, the caller should cancel the
// runner's context.
func (p *Pipeline) Consume(ctx context.Context, results <-chan GameResult) (Summary, error) {
	for result := range results {
		p.emit(result)

		if result.Err != nil {
			p.summary.Errors++
			continue
		}

		record := result.Record
		p.summary.Games++
		p.summary.Samples += len(record.Samples)

		if p.Progress != nil {
			p.Progress.Add(1, len(record.Samples))
		}

		if p.Sink != nil {
			flushed, err := p.Sink.Write(record)
			if err != nil {
				return p.summary, fmt.Errorf("failed to write game %s: %w", record.GameID, err)
			}
			p.noteFlushed(flushed)
		}

		if p.Uploader != nil {
			p.pending = append(p.pending, record)
			if len(p.pending) >= max(1, p.UploadEvery) {
				p.upload(ctx)
			}
		}
	}

	err := p.finish(ctx)
	return p.summary, err
}

func (p *Pipeline) noteFlushed(flushed *store.Flushed) {
	if flushed == nil {
		return
	}

	slog.Info("Parquet flush ok", "path", flushed.Path, "games", flushed.Games, "rows", flushed.Rows)
	p.summary.Files = append(p.summary.Files, flushed.Path)
	p.emit(flushed)
}

// upload sends the pending games. Failed games stay pending for the next attempt.
func (p *Pipeline) upload(ctx context.Context) {
	if len(p.pending) == 0 {
		return
	}

	stored, err := p.Uploader.SubmitGames(ctx, p.pending)
	p.emit(UploadResult{Games: len(p.pending), Stored: stored, Err: err})

	if err != nil {
		slog.Error("Failed to upload games", "games", len(p.pending), "error", err)
		if excess := len(p.pending) - maxPendingUploads; excess > 0 {
			p.pending = p.pending[excess:]
			p.summary.Dropped += excess
		}
		return
	}

	p.summary.Uploaded += stored
	p.pending = p.pending[:0]
}

func (p *Pipeline) finish(ctx context.Context) error {
	if p.Uploader != nil {
		// The run context is usually canceled by now.
		uploadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalUploadTimeout)
		p.upload(uploadCtx)
		cancel()
	}

	if p.Sink == nil {
		return nil
	}

	flushed, err := p.Sink.Flush()
	if err != nil {
		return fmt.Errorf("failed to flush samples: %w", err)
	}
	p.noteFlushed(flushed)
	return nil
}

// Summary returns the counts so far.
func (p *Pipeline) Summary() Summary {
	return p.summary
}
