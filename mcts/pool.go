package mcts

// NodePool recycles TreeNodes across searches so repeated Controller.Search
// calls don't churn the garbage collector on tree construction/teardown.
//
// Grounded on the teacher's mcts/tree.go Naughty arena, which hands out
// slab indices from a free list and zeroes an entry on free. NodePool
// keeps the free-list idea but hands out pointers instead of indices:
// the Design Notes for §4.3 call a pointer-based pool under the shared
// mutex an acceptable alternative to index/slab addressing, and a
// pointer lets TreeNode.Game's *board.Board allocation survive reuse
// untouched (GameState.CopyInto overwrites its contents in place,
// instead of the arena's "zero the slab slot" reset).
type NodePool struct {
	free []*TreeNode
}

// Allocate returns a TreeNode under the given parent, either reused
// from the free list or freshly built. Callers hold the controller's
// search mutex.
func (p *NodePool) Allocate(parent *TreeNode) *TreeNode {
	if n := len(p.free); n > 0 {
		node := p.free[n-1]
		p.free = p.free[:n-1]
		node.reset(parent)
		return node
	}
	node := newTreeNode()
	node.reset(parent)
	return node
}

// Recycle returns a node (and only that node, not its subtree) to the
// free list.
func (p *NodePool) Recycle(node *TreeNode) {
	node.parent = nil
	p.free = append(p.free, node)
}

// Drop discards the entire free list, releasing its backing memory
// (and the *board.Board allocations it was keeping warm) to the GC.
func (p *NodePool) Drop() {
	p.free = nil
}

// Len reports the number of nodes currently held in reserve.
func (p *NodePool) Len() int { return len(p.free) }
