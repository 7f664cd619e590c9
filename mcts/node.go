package mcts

import (
	"reversi/board"
	"reversi/game"
)

// TreeNode is one node of the search tree: the game position it
// represents, the move that produced it, and the UCB1 bookkeeping
// accumulated across rollouts that passed through it.
//
// Grounded on the teacher's mcts.Node (parent pointer, children slice,
// visit/value under a shared mutex), but dropping the PUCT prior/noise
// fields node.go carries for the neural policy — this search has no
// policy network, so selection is plain UCB1 (see bestChild in
// controller.go).
type TreeNode struct {
	parent   *TreeNode
	children []*TreeNode

	// Game is this node's position. Its *board.Board allocation is
	// preserved across NodePool reuse; its contents are overwritten in
	// place by GameState.CopyInto (and, for a new child, by the Put of
	// the move that produced it).
	Game *game.GameState

	untried []int // moves not yet expanded into a child, owned by this node

	visit        uint32
	value        float32
	winRate      float32
	expandFactor float32
}

func newTreeNode() *TreeNode {
	return &TreeNode{Game: &game.GameState{Board: board.New()}}
}

// reset clears a node for reuse under a new parent, keeping its Board
// allocation. Called only by NodePool, under the controller's mutex.
func (n *TreeNode) reset(parent *TreeNode) {
	n.parent = parent
	n.children = n.children[:0]
	n.untried = n.untried[:0]
	n.visit = 0
	n.value = 0
	n.winRate = 0
	n.expandFactor = 0
}
