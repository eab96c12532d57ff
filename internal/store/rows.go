// Package store writes self-play samples to zstd compressed parquet files.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lk16/reversi/internal/models"
	"github.com/parquet-go/parquet-go"
)

// SchemaVersion is stored in the key-value metadata of every file.
const SchemaVersion = "reversi_sample_v1"

// SampleRow is one training sample. State and Target are row-major with Rows*Cols values.
type SampleRow struct {
	GameID     string    `parquet:"game_id,dict"`
	Generation int32     `parquet:"generation"`
	Turn       int32     `parquet:"turn"`
	Rows       int32     `parquet:"rows"`
	Cols       int32     `parquet:"cols"`
	Player     string    `parquet:"player,dict"`
	State      []float32 `parquet:"state"`
	Target     []float32 `parquet:"target"`
	Move       int32     `parquet:"move"`
	Outcome    string    `parquet:"outcome,dict"`
}

// RowsFromRecord flattens a finished game into rows that carry the game outcome.
func RowsFromRecord(record models.GameRecord) []SampleRow {
	rows := make([]SampleRow, 0, len(record.Samples))
	for _, sample := range record.Samples {
		rows = append(rows, SampleRow{
			GameID:     sample.GameID,
			Generation: int32(sample.Generation),
			Turn:       int32(sample.Turn),
			Rows:       int32(sample.Rows),
			Cols:       int32(sample.Cols),
			Player:     sample.Player,
			State:      sample.State,
			Target:     sample.Target,
			Move:       int32(sample.Move),
			Outcome:    record.Outcome,
		})
	}
	return rows
}

// ReadRows reads every row of a sample file.
func ReadRows(path string) ([]SampleRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}

	if schema, ok := pf.Lookup("schema"); !ok || schema != SchemaVersion {
		return nil, fmt.Errorf("unexpected schema %q in %s", schema, path)
	}

	reader := parquet.NewGenericReader[SampleRow](pf)
	defer reader.Close()

	rows := make([]SampleRow, reader.NumRows())
	read := 0
	for read < len(rows) {
		n, err := reader.Read(rows[read:])
		read += n
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return rows[:read], nil
}
