package dashboard

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lk16/reversi/internal/models"
	"github.com/lk16/reversi/internal/selfplay"
	"github.com/lk16/reversi/internal/store"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	model, ok := updated.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModel_Update(t *testing.T) {
	updates := make(chan Update, 1)
	m := New(updates, 4, 0.5)

	m, cmd := update(t, m, selfplay.GameResult{
		WorkerID: 2,
		Record: models.GameRecord{
			Outcome:    "Black",
			Turns:      60,
			BlackCount: 40,
			WhiteCount: 24,
			Samples:    make([]models.Sample, 60),
		},
		Duration: 15 * time.Millisecond,
	})
	require.NotNil(t, cmd)

	m, _ = update(t, m, selfplay.GameResult{WorkerID: 1, Err: errors.New("no model")})
	m, _ = update(t, m, &store.Flushed{Path: "x.parquet", Rows: 60, Games: 1})
	m, _ = update(t, m, selfplay.UploadResult{Games: 1, Stored: 1})
	m, _ = update(t, m, selfplay.UploadResult{Games: 1, Err: errors.New("timeout")})

	require.Equal(t, 1, m.gamesPlayed)
	require.Equal(t, 60, m.samples)
	require.Equal(t, 1, m.errors)
	require.Equal(t, 1, m.files)
	require.Equal(t, 1, m.uploaded)
	require.Equal(t, 1, m.uploadErrors)
	require.Equal(t, "timeout", m.lastError)
	require.Equal(t, []string{
		"Worker 1: error: no model",
		"Worker 2: Black 40-24, Turns 60, 15ms",
	}, m.recentGames)

	view := m.View()
	require.Contains(t, view, "Generation:     4 (epsilon 0.500)")
	require.Contains(t, view, "Games Played:   1")
	require.Contains(t, view, "Outcomes:       Black 1")
	require.Contains(t, view, "Files Written:  1 (60 rows)")
	require.Contains(t, view, "Avg Turns:      60.0")
	require.Contains(t, view, "Press q to quit.")
}

func TestModel_RecentGamesBounded(t *testing.T) {
	m := New(nil, 0, 1)
	for range recentGames + 5 {
		m, _ = update(t, m, selfplay.GameResult{Record: models.GameRecord{Outcome: "Draw"}})
	}

	require.Len(t, m.recentGames, recentGames)
	require.Equal(t, recentGames+5, m.outcomes["Draw"])
}

func TestModel_Done(t *testing.T) {
	updates := make(chan Update)
	close(updates)

	m := New(updates, 0, 1)
	msg := waitForUpdate(updates)()
	require.Equal(t, doneMsg{}, msg)

	m, cmd := update(t, m, msg)
	require.NotNil(t, cmd)
	require.True(t, m.done)
	require.Contains(t, m.View(), "All workers finished.")
}

func TestModel_Tick(t *testing.T) {
	m := New(nil, 0, 1)
	for range 4 {
		m, _ = update(t, m, selfplay.GameResult{Record: models.GameRecord{Outcome: "White"}})
	}

	m, cmd := update(t, m, TickMsg(m.startTime.Add(2*time.Second)))
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), "Games/Sec:      2.00")
	require.Contains(t, m.View(), "Duration:       2s")
}

func TestModel_Quit(t *testing.T) {
	m := New(nil, 0, 1)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}
