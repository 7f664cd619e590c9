// Command reversi is a thin interactive CLI driver over the game and
// mcts packages: it owns the input loop, board printing and move
// parsing, and nothing else. Grounded on the teacher's cmd/infer,
// which is likewise a bufio.Scanner loop around Game.Apply/ShowBoard.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reversi/board"
	"reversi/game"
	"reversi/mcts"
	"reversi/treedump"
)

var (
	threads    = flag.Int("threads", 0, "number of MCTS worker goroutines (0 = hardware parallelism)")
	searchTime = flag.Duration("search_time", time.Second, "per-move search budget")
	humanSide  = flag.String("side", "black", "side the human plays: black or white")
	dumpDir    = flag.String("dump_tree_dir", "", "if set, write MCTS.log/MCTS_FULL.log search-tree dumps to this directory after every engine move")
)

func main() {
	flag.Parse()

	human := board.SideBlack
	if strings.EqualFold(*humanSide, "white") {
		human = board.SideWhite
	}

	cfg := mcts.Config{Threads: *threads, SearchTime: *searchTime}
	if *dumpDir != "" {
		dumper := &treedump.Writer{
			FullPath:    filepath.Join(*dumpDir, "MCTS_FULL.log"),
			SummaryPath: filepath.Join(*dumpDir, "MCTS.log"),
		}
		if err := dumper.Open(); err != nil {
			log.Fatalf("opening tree dump: %v", err)
		}
		cfg.Dumper = dumper
	}

	g := game.New()
	controller := mcts.New(cfg)
	defer controller.Close()

	scanner := bufio.NewScanner(os.Stdin)
	printBoard(g)

	for !g.IsGameFinished() {
		if g.State().SideToMove() == human {
			if !humanTurn(g, scanner) {
				continue
			}
		} else {
			move := controller.Search(g.State())
			if !g.Put(move) {
				fmt.Printf("engine proposed illegal move %s, passing\n", game.IDToStr(move))
				g.Put(game.NoMove)
			}
			fmt.Printf("engine plays %s\n", game.IDToStr(move))
		}
		printBoard(g)
	}

	fmt.Println(resultLine(g))
}

func humanTurn(g *game.Game, scanner *bufio.Scanner) bool {
	fmt.Print("your move (coordinate, \"pass\", or \"undo\"): ")
	if !scanner.Scan() {
		os.Exit(0)
	}
	text := strings.TrimSpace(scanner.Text())

	switch {
	case strings.EqualFold(text, "undo"):
		if g.Turn() <= 2 {
			fmt.Println("nothing to undo")
			return false
		}
		g.Regret(2)
		return true
	case strings.EqualFold(text, "pass"):
		if g.State().Status != game.Pass {
			fmt.Println("you have a legal move; cannot pass")
			return false
		}
		g.Put(game.NoMove)
		return true
	default:
		id := game.StrToID(strings.ToUpper(text))
		if id == game.NoMove || !g.Put(id) {
			fmt.Println("illegal move, try again")
			return false
		}
		return true
	}
}

func printBoard(g *game.Game) {
	state := g.State()
	fmt.Printf("\nTurn %d, %s's turn\n", state.Turn, state.SideToMove())
	fmt.Printf("Current State: %s\n", state.Status)
	fmt.Printf("Black: %d | White: %d\n", state.Board.BlackCount(), state.Board.WhiteCount())

	fmt.Print("  ")
	for c := 0; c < board.Size; c++ {
		fmt.Printf(" %c", 'A'+c)
	}
	fmt.Println()
	for r := 0; r < board.Size; r++ {
		fmt.Printf("%2d", r+1)
		for c := 0; c < board.Size; c++ {
			fmt.Printf(" %s", cellGlyph(state.Board.GetRC(r, c)))
		}
		fmt.Println()
	}
}

func cellGlyph(c board.Cell) string {
	switch c {
	case board.Black:
		return "●" // ●
	case board.White:
		return "○" // ○
	default:
		return "·" // ·
	}
}

func resultLine(g *game.Game) string {
	switch g.State().Status {
	case game.BlackWin:
		return "Black wins"
	case game.WhiteWin:
		return "White wins"
	case game.Draw:
		return "Draw"
	default:
		return "Game unfinished"
	}
}
