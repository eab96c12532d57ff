package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/dashboard"
	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/routes/version"
	"github.com/lk16/reversi/internal/selfplay"
	"github.com/lk16/reversi/internal/store"
)

func main() {
	os.Exit(run())
}

// run plays self-play games and returns the process exit code, so deferred
// cleanup finishes before exiting.
func run() int {
	workers := flag.Int("workers", runtime.NumCPU(), "number of self-play workers")
	games := flag.Int("games", 0, "stop after this many games, 0 plays until interrupted")
	generation := flag.Int("generation", 0, "model generation, sets the exploration rate")
	rows := flag.Int("rows", othello.DefaultSize, "number of rows")
	cols := flag.Int("cols", othello.DefaultSize, "number of columns")
	style := flag.String("style", ">", "win style: > for most discs wins, < for fewest discs wins")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed")
	modelPath := flag.String("model", "", "ONNX scoring model, random scores when empty")
	ortLib := flag.String("ort-lib", "", "onnxruntime shared library, defaults to $ORT_SHARED_LIBRARY_PATH")
	onnxInput := flag.String("onnx-input", selfplay.DefaultOnnxInput, "name of the model input")
	onnxOutput := flag.String("onnx-output", selfplay.DefaultOnnxOutput, "name of the model output")
	outDir := flag.String("out-dir", config.DefaultSelfPlayDir(), "output directory for parquet batches")
	gamesPerFile := flag.Int("games-per-file", 100, "number of games per parquet file")
	upload := flag.Bool("upload", false, "upload games to $REVERSI_SERVER_URL")
	uploadEvery := flag.Int("upload-every", 100, "number of games per upload")
	heartbeat := flag.Duration("heartbeat", 30*time.Second, "heartbeat interval while uploading")
	showDashboard := flag.Bool("dashboard", false, "show a live dashboard instead of logs")
	verbose := flag.Bool("verbose", false, "log uploads as curl commands")
	flag.Parse()

	config.SetLogLevel()

	winStyle, err := othello.ParseWinStyle(*style)
	if err != nil {
		log.Printf("Invalid style: %v", err)
		return 1
	}

	if err = os.MkdirAll(*outDir, 0o755); err != nil {
		log.Printf("Failed to create output directory: %v", err)
		return 1
	}

	var scorer selfplay.Scorer
	if *modelPath == "" {
		scorer = selfplay.NewRandomScorer(*seed)
	} else {
		scorer, err = selfplay.NewOnnxScorer(selfplay.OnnxConfig{
			ModelPath:   *modelPath,
			LibraryPath: *ortLib,
			InputName:   *onnxInput,
			OutputName:  *onnxOutput,
			Rows:        *rows,
			Cols:        *cols,
		})
		if err != nil {
			log.Printf("Failed to load model: %v", err)
			return 1
		}
	}
	defer scorer.Close()

	gameConfig := selfplay.GameConfig{
		Rows:        *rows,
		Cols:        *cols,
		Style:       winStyle,
		Generation:  *generation,
		Epsilon:     selfplay.Epsilon(*generation),
		RewardScale: selfplay.DefaultRewardScale,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pipeline := &selfplay.Pipeline{
		Sink:        store.NewSink(*outDir, *gamesPerFile),
		UploadEvery: *uploadEvery,
	}

	if *upload {
		hostname, err := os.Hostname()
		if err != nil {
			log.Printf("Failed to get hostname: %v", err)
			return 1
		}

		uploader := selfplay.NewUploader(config.LoadUploadConfig(), hostname, version.GitCommit(), *verbose)
		pipeline.Uploader = uploader
		pipeline.Progress = &selfplay.Progress{}

		go uploader.HeartbeatLoop(runCtx, *heartbeat, pipeline.Progress)
	}

	var events chan any
	if *showDashboard {
		logFile, err := tea.LogToFile(filepath.Join(*outDir, "selfplay.log"), "selfplay")
		if err != nil {
			log.Printf("Failed to open log file: %v", err)
			return 1
		}
		defer logFile.Close()
		slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

		events = make(chan any, 256)
		pipeline.Events = events
	}

	slog.Info("Starting self-play", "workers", *workers, "games", *games, "generation", *generation,
		"epsilon", gameConfig.Epsilon, "rows", *rows, "cols", *cols, "out_dir", *outDir)

	runner := selfplay.NewRunner(selfplay.RunnerConfig{
		Workers: *workers,
		Games:   *games,
		Seed:    *seed,
		Game:    gameConfig,
	}, scorer)
	results := runner.Run(runCtx)

	var summary selfplay.Summary
	var consumeErr error
	done := make(chan struct{})

	go func() {
		defer close(done)
		summary, consumeErr = pipeline.Consume(runCtx, results)
		if consumeErr != nil {
			cancel()
		}
		if events != nil {
			close(events)
		}
	}()

	if *showDashboard {
		program := tea.NewProgram(dashboard.New(events, *generation, gameConfig.Epsilon), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			slog.Error("Dashboard failed", "error", err)
		}
		cancel()
	}

	<-done

	if consumeErr != nil {
		log.Printf("Self-play failed: %v", consumeErr)
		return 1
	}

	log.Printf("Self-play finished: games=%d samples=%d errors=%d files=%d uploaded=%d",
		summary.Games, summary.Samples, summary.Errors, len(summary.Files), summary.Uploaded)
	return 0
}
