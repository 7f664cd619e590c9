package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"reversi/board"
)

func TestNewGameStateOpeningPosition(t *testing.T) {
	g := NewGameState()
	assert.Equal(t, 1, g.Turn)
	assert.Equal(t, Normal, g.Status)
	assert.Equal(t, board.SideBlack, g.SideToMove())
	assert.ElementsMatch(t, []int{cellID(2, 3), cellID(3, 2), cellID(4, 5), cellID(5, 4)}, g.LegalMoves)
}

func TestPutRejectsIllegalMove(t *testing.T) {
	g := NewGameState()
	ok := g.Put(cellID(0, 0))
	assert.False(t, ok)
	assert.Equal(t, 1, g.Turn, "illegal Put must not mutate state")
}

func TestPutAppliesLegalMoveAndAdvancesTurn(t *testing.T) {
	g := NewGameState()
	move := g.LegalMoves[0]
	require.True(t, g.Put(move))
	assert.Equal(t, 2, g.Turn)
	assert.Equal(t, move, g.LastMove)
	assert.Equal(t, board.SideWhite, g.SideToMove())
}

func TestPutPassRequiresPassStatus(t *testing.T) {
	g := NewGameState()
	ok := g.Put(NoMove)
	assert.False(t, ok, "cannot pass while a legal move exists")
}

func TestPutRandomAlwaysProducesLegalState(t *testing.T) {
	g := NewGameState()
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200 && !g.IsTerminal(); i++ {
		before := g.Status
		legal := append([]int(nil), g.LegalMoves...)
		move := g.PutRandom(rng)
		if before == Pass {
			assert.Equal(t, NoMove, move)
		} else {
			assert.Contains(t, validCells(), move)
			assert.Contains(t, legal, move, "PutRandom must play one of the legal moves")
		}
	}
}

func validCells() []int {
	cells := make([]int, board.NumCells)
	for i := range cells {
		cells[i] = i
	}
	return cells
}

func TestTerminalByWipeout(t *testing.T) {
	assert.Equal(t, WhiteWin, terminalByCount(0, 30))
	assert.Equal(t, BlackWin, terminalByCount(30, 0))
	assert.Equal(t, Draw, terminalByCount(32, 32))
}

func TestGameReachesTerminalState(t *testing.T) {
	g := NewGameState()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000 && !g.IsTerminal(); i++ {
		g.PutRandom(rng)
	}
	require.True(t, g.IsTerminal(), "a full random playout must terminate well within 1000 plies")
	black, white := g.Board.BlackCount(), g.Board.WhiteCount()
	assert.Equal(t, terminalByCount(black, white), g.Status)
}

func TestFastStopWinnerUsesPreAndPostMoveCounts(t *testing.T) {
	g := NewGameState()
	require.True(t, g.Put(g.LegalMoves[0]))
	// lastBlackCount/lastWhiteCount were captured just before this Put.
	want := terminalByCount(g.lastBlackCount+g.Board.BlackCount(), g.lastWhiteCount+g.Board.WhiteCount())
	assert.Equal(t, want, g.FastStopWinner())
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewGameState()
	clone := g.Clone()
	require.True(t, clone.Put(clone.LegalMoves[0]))
	assert.NotEqual(t, g.Turn, clone.Turn)
	assert.Equal(t, 1, g.Turn)
}

func TestCopyIntoReusesDestinationBoard(t *testing.T) {
	g := NewGameState()
	dst := &GameState{Board: board.New()}
	originalBoardPtr := dst.Board
	g.CopyInto(dst)
	assert.Same(t, originalBoardPtr, dst.Board, "CopyInto must not reallocate the destination Board")
	assert.Equal(t, g.Turn, dst.Turn)
	assert.Equal(t, g.Board.BlackCount(), dst.Board.BlackCount())
}
