// Package dashboard shows live self-play progress in the terminal.
package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lk16/reversi/internal/selfplay"
	"github.com/lk16/reversi/internal/store"
)

const recentGames = 10

// Update is anything sent on the updates channel: selfplay.GameResult, *store.Flushed or
// selfplay.UploadResult.
type Update = any

type TickMsg time.Time

type doneMsg struct{}

// Model is the bubbletea model of the dashboard.
type Model struct {
	generation int
	epsilon    float64

	gamesPlayed  int
	samples      int
	turns        int
	outcomes     map[string]int
	errors       int
	files        int
	rowsWritten  int
	uploaded     int
	uploadErrors int
	lastError    string
	recentGames  []string

	startTime time.Time
	now       time.Time
	done      bool

	updates <-chan Update
}

func New(updates <-chan Update, generation int, epsilon float64) Model {
	start := time.Now()
	return Model{
		generation: generation,
		epsilon:    epsilon,
		outcomes:   map[string]int{},
		startTime:  start,
		now:        start,
		updates:    updates,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForUpdate(updates <-chan Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return update
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case selfplay.GameResult:
		m.recordGame(msg)
		return m, waitForUpdate(m.updates)
	case *store.Flushed:
		m.files++
		m.rowsWritten += msg.Rows
		return m, waitForUpdate(m.updates)
	case selfplay.UploadResult:
		if msg.Err != nil {
			m.uploadErrors++
			m.lastError = msg.Err.Error()
		} else {
			m.uploaded += msg.Stored
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m *Model) recordGame(result selfplay.GameResult) {
	var line string

	if result.Err != nil {
		m.errors++
		m.lastError = result.Err.Error()
		line = fmt.Sprintf("Worker %d: error: %v", result.WorkerID, result.Err)
	} else {
		record := result.Record
		m.gamesPlayed++
		m.samples += len(record.Samples)
		m.turns += record.Turns
		m.outcomes[record.Outcome]++
		line = fmt.Sprintf("Worker %d: %s %d-%d, Turns %d, %s", result.WorkerID, record.Outcome,
			record.BlackCount, record.WhiteCount, record.Turns, result.Duration.Round(time.Millisecond))
	}

	m.recentGames = append([]string{line}, m.recentGames...)
	if len(m.recentGames) > recentGames {
		m.recentGames = m.recentGames[:recentGames]
	}
}

func (m Model) View() string {
	duration := m.now.Sub(m.startTime)
	gamesPerSec := 0.0
	if duration >= time.Second {
		gamesPerSec = float64(m.gamesPlayed) / duration.Seconds()
	}

	avgTurns := 0.0
	if m.gamesPlayed > 0 {
		avgTurns = float64(m.turns) / float64(m.gamesPlayed)
	}

	var s strings.Builder
	fmt.Fprintf(&s, "Generation:     %d (epsilon %.3f)\n", m.generation, m.epsilon)
	fmt.Fprintf(&s, "Games Played:   %d\n", m.gamesPlayed)
	fmt.Fprintf(&s, "Total Samples:  %d\n", m.samples)
	fmt.Fprintf(&s, "Avg Turns:      %.1f\n", avgTurns)
	fmt.Fprintf(&s, "Outcomes:       %s\n", m.outcomeSummary())
	fmt.Fprintf(&s, "Files Written:  %d (%d rows)\n", m.files, m.rowsWritten)
	fmt.Fprintf(&s, "Uploaded:       %d (%d failed)\n", m.uploaded, m.uploadErrors)
	fmt.Fprintf(&s, "Errors:         %d\n", m.errors)
	fmt.Fprintf(&s, "Duration:       %s\n", duration.Round(time.Second))
	fmt.Fprintf(&s, "Games/Sec:      %.2f\n", gamesPerSec)

	if m.lastError != "" {
		fmt.Fprintf(&s, "Last Error:     %s\n", m.lastError)
	}

	s.WriteString("\nRecent Games:\n")
	for _, g := range m.recentGames {
		s.WriteString(g + "\n")
	}

	if m.done {
		s.WriteString("\nAll workers finished.\n")
	} else {
		s.WriteString("\nPress q to quit.\n")
	}
	return s.String()
}

func (m Model) outcomeSummary() string {
	if len(m.outcomes) == 0 {
		return "-"
	}

	keys := make([]string, 0, len(m.outcomes))
	for key := range m.outcomes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", key, m.outcomes[key]))
	}
	return strings.Join(parts, ", ")
}
