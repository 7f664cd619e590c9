package mcts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reversi/game"
)

func TestSearchOnPassStateReturnsNoMove(t *testing.T) {
	c := New(Config{Threads: 2, SearchTime: 20 * time.Millisecond})
	defer c.Close()

	state := game.NewGameState()
	state.ForceStatus(game.Pass)
	move := c.Search(state)
	assert.Equal(t, game.NoMove, move)
}

func TestSearchOnTerminalStateReturnsNoMove(t *testing.T) {
	c := New(Config{Threads: 1, SearchTime: 20 * time.Millisecond})
	defer c.Close()

	state := game.NewGameState()
	state.ForceStatus(game.BlackWin)
	move := c.Search(state)
	assert.Equal(t, game.NoMove, move)
}

func TestSearchReturnsALegalMove(t *testing.T) {
	c := New(Config{Threads: 4, SearchTime: 50 * time.Millisecond})
	defer c.Close()

	state := game.NewGameState()
	legal := append([]int(nil), state.LegalMoves...)

	move := c.Search(state)
	assert.Contains(t, legal, move)
}

func TestSearchLeavesOriginalStateUnmodified(t *testing.T) {
	c := New(Config{Threads: 2, SearchTime: 30 * time.Millisecond})
	defer c.Close()

	state := game.NewGameState()
	turnBefore := state.Turn
	legalBefore := append([]int(nil), state.LegalMoves...)

	c.Search(state)

	assert.Equal(t, turnBefore, state.Turn)
	assert.Equal(t, legalBefore, state.LegalMoves)
}

func TestSearchRecyclesTreeBackIntoPool(t *testing.T) {
	c := New(Config{Threads: 1, SearchTime: 30 * time.Millisecond})
	defer c.Close()

	state := game.NewGameState()
	c.Search(state)
	assert.Nil(t, c.root, "Search must clear c.root once finished")
	assert.Greater(t, c.pool.Len(), 0, "the searched tree should be back in the free list")
}

func TestStatsReportRolloutDiagnostics(t *testing.T) {
	c := New(Config{Threads: 2, SearchTime: 50 * time.Millisecond})
	defer c.Close()

	state := game.NewGameState()
	c.Search(state)

	stats := c.Stats()
	require.Greater(t, stats.Iterations, 0)
}

func TestBestChildPrefersHigherWinRateAtZeroExploration(t *testing.T) {
	root := newTreeNode()
	root.visit = 10
	a := newTreeNode()
	a.parent = root
	a.visit = 5
	a.winRate = 0.9
	b := newTreeNode()
	b.parent = root
	b.visit = 5
	b.winRate = 0.1
	root.children = []*TreeNode{b, a}

	c := &Controller{}
	best := c.bestChild(root, 0)
	assert.Same(t, a, best)
}

func TestBackpropagateIncrementsVisitAlongPath(t *testing.T) {
	root := newTreeNode()
	root.Game = game.NewGameState()
	child := newTreeNode()
	child.parent = root
	child.Game = game.NewGameState()
	require.True(t, child.Game.Put(child.Game.LegalMoves[0]))

	c := &Controller{rootSide: root.Game.SideToMove()}
	c.backpropagate(child, 0.5)

	assert.EqualValues(t, 1, child.visit)
	assert.EqualValues(t, 1, root.visit)
}
