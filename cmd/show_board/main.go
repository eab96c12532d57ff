package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/lk16/reversi/internal/othello"
)

func main() {
	rows := flag.Int("rows", 8, "number of rows")
	cols := flag.Int("cols", 8, "number of columns")
	turn := flag.String("turn", "black", "player to move: black or white")
	style := flag.String("style", ">", "win style: > for most discs wins, < for fewest discs wins")
	layoutPath := flag.String("layout", "", "file with one row per line using B, W and . markers")
	flag.Parse()

	first, err := othello.ParseCell(*turn)
	if err != nil {
		log.Fatalf("Invalid turn: %v", err)
	}

	winStyle, err := othello.ParseWinStyle(*style)
	if err != nil {
		log.Fatalf("Invalid style: %v", err)
	}

	var game *othello.Game
	if *layoutPath == "" {
		game, err = othello.New(*rows, *cols, first, winStyle)
	} else {
		var layout [][]othello.Cell
		if layout, err = othello.ReadLayoutFile(*layoutPath); err != nil {
			log.Fatalf("%v", err)
		}
		game, err = othello.NewWithLayout(*rows, *cols, first, winStyle, layout)
	}
	if err != nil {
		log.Fatalf("Invalid board: %v", err)
	}

	game.Print()

	moves := game.LegalMoves()
	fields := make([]string, len(moves))
	for i, move := range moves {
		fields[i] = move.String()
	}

	fmt.Printf("Black: %d  White: %d  To move: %s\n", game.BlackCount(), game.WhiteCount(), game.Turn())
	fmt.Printf("Legal moves: %s\n", strings.Join(fields, " "))

	if outcome, done := game.FindWinner(); done {
		fmt.Printf("Result: %s\n", outcome)
	}
}
