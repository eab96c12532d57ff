package selfplay

import (
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	DefaultOnnxInput  = "input"
	DefaultOnnxOutput = "scores"
)

// OnnxConfig locates a scoring model exported to ONNX. The model takes a [1, rows, cols]
// float tensor and returns [1, rows*cols] scores.
type OnnxConfig struct {
	ModelPath string

	// LibraryPath is the onnxruntime shared library, ORT_SHARED_LIBRARY_PATH when empty.
	LibraryPath string

	InputName  string
	OutputName string
	Rows       int
	Cols       int
}

// OnnxScorer scores boards with an ONNX model.
type OnnxScorer struct {
	session *ort.DynamicAdvancedSession
	rows    int
	cols    int
}

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

func NewOnnxScorer(cfg OnnxConfig) (*OnnxScorer, error) {
	if cfg.ModelPath == "" {
		return nil, errors.New("model path is empty")
	}
	if cfg.InputName == "" {
		cfg.InputName = DefaultOnnxInput
	}
	if cfg.OutputName == "" {
		cfg.OutputName = DefaultOnnxOutput
	}

	libraryPath := cfg.LibraryPath
	if libraryPath == "" {
		libraryPath = os.Getenv("ORT_SHARED_LIBRARY_PATH")
	}

	ortInitOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("failed to init ort: %w", ortInitErr)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	defer options.Destroy()

	// Workers run games in parallel, one thread per inference keeps them from contending.
	if err = options.SetIntraOpNumThreads(1); err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName}, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &OnnxScorer{session: session, rows: cfg.Rows, cols: cfg.Cols}, nil
}

func (s *OnnxScorer) Score(state []float32, rows, cols int) ([]float32, error) {
	if rows != s.rows || cols != s.cols {
		return nil, fmt.Errorf("model expects a %dx%d board, got %dx%d", s.rows, s.cols, rows, cols)
	}
	if len(state) != rows*cols {
		return nil, fmt.Errorf("state has %d values for a %dx%d board", len(state), rows, cols)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(rows), int64(cols)), state)
	if err != nil {
		return nil, err
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(rows*cols)))
	if err != nil {
		return nil, err
	}
	defer output.Destroy()

	if err = s.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	scores := make([]float32, rows*cols)
	copy(scores, output.GetData())
	return scores, nil
}

func (s *OnnxScorer) Close() error {
	return s.session.Destroy()
}
