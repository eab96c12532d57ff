package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

var (
	uiConfigFile = "reversi/config.json"
	selfPlayDir  = "reversi/selfplay"
)

// UIColors are terminal palette indices, see tcell.PaletteColor.
type UIColors struct {
	Board      int `json:"board"`
	BoardAlt   int `json:"board_alt"`
	Black      int `json:"black"`
	White      int `json:"white"`
	Cursor     int `json:"cursor"`
	LegalMove  int `json:"legal_move"`
	LastPlayed int `json:"last_played"`
}

type UISymbols struct {
	Disc      rune `json:"disc"`
	LegalMove rune `json:"legal_move"`
	Empty     rune `json:"empty"`
}

// UIConfig is the terminal front end theme, stored as JSON in the XDG config directory.
type UIConfig struct {
	Colors         UIColors  `json:"colors"`
	Symbols        UISymbols `json:"symbols"`
	ShowLegalMoves bool      `json:"show_legal_moves"`
}

// DefaultUIConfig returns the built-in theme.
func DefaultUIConfig() UIConfig {
	return UIConfig{
		Colors: UIColors{
			Board:      22,
			BoardAlt:   28,
			Black:      232,
			White:      255,
			Cursor:     4,
			LegalMove:  148,
			LastPlayed: 2,
		},
		Symbols: UISymbols{
			Disc:      '●',
			LegalMove: '·',
			Empty:     ' ',
		},
		ShowLegalMoves: true,
	}
}

// Validate rejects control characters as board symbols.
func (c *UIConfig) Validate() error {
	for _, r := range []rune{c.Symbols.Disc, c.Symbols.LegalMove, c.Symbols.Empty} {
		if r < 32 || (r >= 127 && r <= 159) {
			return errors.New("unicode characters 1-31 and 127-159 are not allowed as symbols")
		}
	}

	colors := []int{
		c.Colors.Board, c.Colors.BoardAlt, c.Colors.Black, c.Colors.White,
		c.Colors.Cursor, c.Colors.LegalMove, c.Colors.LastPlayed,
	}
	for _, color := range colors {
		if color < 0 || color > 255 {
			return fmt.Errorf("palette color %d is out of range", color)
		}
	}

	return nil
}

// LoadUIConfig reads the theme from the XDG config directory, falling back to the
// defaults for a missing file or missing fields.
func LoadUIConfig() (*UIConfig, error) {
	path, err := xdg.SearchConfigFile(uiConfigFile)
	if err != nil {
		cfg := DefaultUIConfig()
		return &cfg, nil
	}
	return LoadUIConfigFile(path)
}

// LoadUIConfigFile reads the theme from path on top of the defaults.
func LoadUIConfigFile(path string) (*UIConfig, error) {
	cfg := DefaultUIConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ui config: %w", err)
	}

	if err = json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse ui config %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ui config %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the theme to the XDG config directory.
func (c *UIConfig) Save() error {
	path, err := xdg.ConfigFile(uiConfigFile)
	if err != nil {
		return fmt.Errorf("failed to resolve ui config path: %w", err)
	}
	return c.SaveFile(path, 0o644)
}

// SaveFile writes the theme as indented JSON.
func (c *UIConfig) SaveFile(path string, perm fs.FileMode) error {
	content, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ui config: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create ui config dir: %w", err)
	}

	if err = os.WriteFile(path, content, perm); err != nil {
		return fmt.Errorf("failed to write ui config: %w", err)
	}
	return nil
}

// DefaultSelfPlayDir returns the directory self-play batches are written to by default.
func DefaultSelfPlayDir() string {
	return filepath.Join(xdg.DataHome, selfPlayDir)
}
