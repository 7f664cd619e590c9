// Package game implements Reversi rules on top of board.Board: turn
// tracking, move legality/application, terminal-state detection, and
// the priority-filtered legal-move list the search consumes.
package game

import (
	"golang.org/x/exp/rand"

	"reversi/board"
)

// Status is the game's lifecycle state.
type Status uint8

const (
	Normal Status = iota
	Pass
	BlackWin
	WhiteWin
	Draw
)

func (s Status) String() string {
	switch s {
	case Normal:
		return "Normal"
	case Pass:
		return "Pass"
	case BlackWin:
		return "BlackWin"
	case WhiteWin:
		return "WhiteWin"
	case Draw:
		return "Draw"
	default:
		return "Unknown"
	}
}

// NoMove is the "absent" cell id: no move was made (a pass).
const NoMove = -1

// openingHalfTurns is the spec's "turn < 32" cutoff between the
// opening and late-game legal-move bucket rules.
const openingHalfTurns = 32

// GameState is the board plus turn counter, side to move, status and
// the current legal-move list.
type GameState struct {
	Board *board.Board

	Turn     int
	LastMove int // NoMove when absent

	lastBlackCount int
	lastWhiteCount int

	Status Status

	LegalMoves []int
}

// NewGameState returns an initialized GameState: the four-disc
// opening position with Black to move. D4 and E5 are White, D5 and
// E4 are Black (column letter first, 1-indexed row), matching the
// convention fixed in spec.md §9.
func NewGameState() *GameState {
	g := &GameState{Board: board.New()}
	g.Init()
	return g
}

// Init resets to the initial position.
func (g *GameState) Init() {
	g.Board.Clear()
	g.Turn = 1
	g.LastMove = NoMove
	g.Status = Normal
	g.lastBlackCount = 0
	g.lastWhiteCount = 0

	g.Board.Set(cellID(3, 3), board.SideWhite, false)
	g.Board.Set(cellID(3, 4), board.SideBlack, false)
	g.Board.Set(cellID(4, 3), board.SideBlack, false)
	g.Board.Set(cellID(4, 4), board.SideWhite, false)

	g.RecomputeLegalMoves()
}

func cellID(row, col int) int { return row*board.Size + col }

// SideToMove returns Black on odd turns, White on even turns.
func (g *GameState) SideToMove() board.Side {
	if g.Turn%2 == 1 {
		return board.SideBlack
	}
	return board.SideWhite
}

// Clone returns a deep, independent copy of the state.
func (g *GameState) Clone() *GameState {
	b := *g.Board
	return &GameState{
		Board:          &b,
		Turn:           g.Turn,
		LastMove:       g.LastMove,
		lastBlackCount: g.lastBlackCount,
		lastWhiteCount: g.lastWhiteCount,
		Status:         g.Status,
		LegalMoves:     append([]int(nil), g.LegalMoves...),
	}
}

// CopyInto copies g's contents into dst, reusing dst's existing
// *board.Board allocation rather than replacing it. This is what the
// MCTS NodePool relies on to keep a node's board allocation alive
// across reuse: a pooled node's Game is refilled in place with
// CopyInto, never swapped for a new GameState or Board.
func (g *GameState) CopyInto(dst *GameState) {
	*dst.Board = *g.Board
	dst.Turn = g.Turn
	dst.LastMove = g.LastMove
	dst.lastBlackCount = g.lastBlackCount
	dst.lastWhiteCount = g.lastWhiteCount
	dst.Status = g.Status
	dst.LegalMoves = append(dst.LegalMoves[:0], g.LegalMoves...)
}

// Put applies a move (or NoMove when passing). It returns false
// (InvalidMove) when the move is illegal; the board, turn, status and
// legal moves are then unchanged, but the pre-move disc counts used by
// FastStopWinner have already been recorded from the current board.
func (g *GameState) Put(cellIDOrAbsent int) bool {
	g.lastBlackCount = g.Board.BlackCount()
	g.lastWhiteCount = g.Board.WhiteCount()

	switch g.Status {
	case Normal:
		if cellIDOrAbsent < 0 || cellIDOrAbsent >= board.NumCells {
			return false
		}
		if g.Board.Get(cellIDOrAbsent) != board.Empty {
			return false
		}
		if !g.Board.IsLegal(cellIDOrAbsent) {
			return false
		}
		g.Board.Set(cellIDOrAbsent, g.SideToMove(), true)
		g.LastMove = cellIDOrAbsent
	case Pass:
		if cellIDOrAbsent != NoMove {
			return false
		}
		g.LastMove = NoMove
	default:
		return false
	}

	g.Turn++
	g.RecomputeLegalMoves()

	black, white := g.Board.BlackCount(), g.Board.WhiteCount()
	switch {
	case black == 0 || white == 0 || black+white == board.NumCells:
		g.Status = terminalByCount(black, white)
	case g.Status == Pass && len(g.LegalMoves) == 0:
		g.Status = terminalByCount(black, white)
	case g.Status == Normal && len(g.LegalMoves) == 0:
		g.Status = Pass
	case g.Status == Pass && len(g.LegalMoves) > 0:
		g.Status = Normal
	}
	return true
}

func terminalByCount(black, white int) Status {
	switch {
	case black == white:
		return Draw
	case black > white:
		return BlackWin
	default:
		return WhiteWin
	}
}

// PutRandom plays a uniformly random legal move (or passes) and
// returns the cell id played (NoMove for a pass).
func (g *GameState) PutRandom(rng *rand.Rand) int {
	if g.Status == Pass {
		g.Put(NoMove)
		return NoMove
	}
	idx := rng.Intn(len(g.LegalMoves))
	last := len(g.LegalMoves) - 1
	g.LegalMoves[idx], g.LegalMoves[last] = g.LegalMoves[last], g.LegalMoves[idx]
	move := g.LegalMoves[last]
	g.LegalMoves = g.LegalMoves[:last]
	g.Put(move)
	return move
}

// RecomputeLegalMoves classifies the board for the side to move, picks
// the single highest-priority non-empty bucket (High, then Middle,
// then Low), and sets LegalMoves to that bucket.
//
// UpdateValidGridsExtra in the original source computed a secondary
// "extras" bucket for the late game but always returned false and was
// never consumed by a caller; per spec.md §9 that mechanism is
// deliberately left unimplemented (single-bucket rule only).
func (g *GameState) RecomputeLegalMoves() {
	g.Board.Classify(g.SideToMove())

	var chosen board.Priority
	found := false
	for _, p := range board.PriorityOrder() {
		if g.Board.HasPriority(p) {
			chosen = p
			found = true
			break
		}
	}
	if !found {
		g.LegalMoves = nil
		return
	}
	g.LegalMoves = g.Board.ValidMovesByPriority(chosen)
}

// IsTerminal reports whether Status is a finished-game state.
func (g *GameState) IsTerminal() bool {
	return g.Status == BlackWin || g.Status == WhiteWin || g.Status == Draw
}

// ForceStatus is used only by the MCTS rollout's fast-stop rule to
// terminate a playout early with a computed winner.
func (g *GameState) ForceStatus(s Status) { g.Status = s }

// FastStopWinner decides the winner for a fast-stopped rollout by
// summing pre-move and current disc counts, biasing toward whichever
// side was ahead before the final move — the exact rule the original
// Reversi::CalcBetterSide used (see SPEC_FULL.md §4).
func (g *GameState) FastStopWinner() Status {
	black := g.lastBlackCount + g.Board.BlackCount()
	white := g.lastWhiteCount + g.Board.WhiteCount()
	return terminalByCount(black, white)
}
