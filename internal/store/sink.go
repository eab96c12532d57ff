package store

import (
	"github.com/lk16/reversi/internal/models"
)

// Flushed describes a finalized file.
type Flushed struct {
	Path  string
	Rows  int
	Games int
}

// Sink writes games to a new file every gamesPerFile games.
type Sink struct {
	outDir       string
	gamesPerFile int
	current      *BatchWriter
}

func NewSink(outDir string, gamesPerFile int) *Sink {
	return &Sink{outDir: outDir, gamesPerFile: max(1, gamesPerFile)}
}

// Write stores one game. When the current file is full it is finalized and returned.
func (s *Sink) Write(record models.GameRecord) (*Flushed, error) {
	if s.current == nil {
		writer, err := NewBatchWriter(s.outDir)
		if err != nil {
			return nil, err
		}
		s.current = writer
	}

	if err := s.current.WriteGame(RowsFromRecord(record)); err != nil {
		return nil, err
	}

	if s.current.BufferedGames() < s.gamesPerFile {
		return nil, nil
	}
	return s.Flush()
}

// Flush finalizes the current file. It returns nil when nothing was written.
func (s *Sink) Flush() (*Flushed, error) {
	if s.current == nil {
		return nil, nil
	}

	path, rows, games, err := s.current.Finalize()
	s.current = nil
	if err != nil || path == "" {
		return nil, err
	}

	return &Flushed{Path: path, Rows: rows, Games: games}, nil
}
