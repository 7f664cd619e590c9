package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodePoolAllocateBuildsFreshWhenEmpty(t *testing.T) {
	var p NodePool
	n := p.Allocate(nil)
	require.NotNil(t, n)
	require.NotNil(t, n.Game)
	require.NotNil(t, n.Game.Board)
}

func TestNodePoolRecycleReusesAllocation(t *testing.T) {
	var p NodePool
	n := p.Allocate(nil)
	boardPtr := n.Game.Board
	n.visit = 7
	n.children = append(n.children, p.Allocate(n))

	p.Recycle(n)
	assert.Equal(t, 1, p.Len())

	reused := p.Allocate(nil)
	assert.Same(t, n, reused, "the only free node must be handed back")
	assert.Same(t, boardPtr, reused.Game.Board, "Board allocation must survive recycling")
	assert.Zero(t, reused.visit)
	assert.Empty(t, reused.children)
}

func TestNodePoolDropClearsFreeList(t *testing.T) {
	var p NodePool
	n := p.Allocate(nil)
	p.Recycle(n)
	require.Equal(t, 1, p.Len())
	p.Drop()
	assert.Equal(t, 0, p.Len())
}
