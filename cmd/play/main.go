package main

import (
	"flag"
	"log"

	"github.com/lk16/reversi/internal/config"
	"github.com/lk16/reversi/internal/othello"
	"github.com/lk16/reversi/internal/tui"
)

func main() {
	rows := flag.Int("rows", othello.DefaultSize, "number of rows")
	cols := flag.Int("cols", othello.DefaultSize, "number of columns")
	first := flag.String("first", "black", "player to move first: black or white")
	style := flag.String("style", ">", "win style: > for most discs wins, < for fewest discs wins")
	layoutPath := flag.String("layout", "", "file with one row per line using B, W and . markers")
	setup := flag.Bool("setup", false, "start by placing pieces")
	themePath := flag.String("theme", "", "theme JSON file, defaults to the XDG config directory")
	writeTheme := flag.Bool("write-theme", false, "save the loaded theme to the XDG config directory and exit")
	flag.Parse()

	firstPlayer, err := othello.ParseCell(*first)
	if err != nil {
		log.Fatalf("Invalid first player: %v", err)
	}

	winStyle, err := othello.ParseWinStyle(*style)
	if err != nil {
		log.Fatalf("Invalid style: %v", err)
	}

	var game *othello.Game
	if *layoutPath == "" {
		game, err = othello.New(*rows, *cols, firstPlayer, winStyle)
	} else {
		var layout [][]othello.Cell
		if layout, err = othello.ReadLayoutFile(*layoutPath); err != nil {
			log.Fatalf("%v", err)
		}
		game, err = othello.NewWithLayout(*rows, *cols, firstPlayer, winStyle, layout)
	}
	if err != nil {
		log.Fatalf("Invalid board: %v", err)
	}

	var theme *config.UIConfig
	if *themePath == "" {
		theme, err = config.LoadUIConfig()
	} else {
		theme, err = config.LoadUIConfigFile(*themePath)
	}
	if err != nil {
		log.Fatalf("Failed to load theme: %v", err)
	}

	if *writeTheme {
		if err = theme.Save(); err != nil {
			log.Fatalf("Failed to save theme: %v", err)
		}
		return
	}

	if err = tui.Run(tui.NewSession(game, *setup), theme); err != nil {
		log.Fatalf("Terminal UI failed: %v", err)
	}
}
