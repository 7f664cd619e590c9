// Package mcts implements the Monte Carlo Tree Search controller: tree
// policy (selection plus single-node expansion), a random default
// policy with a fast-stop early-termination rule, UCB1 child selection
// and backpropagation, run by a pool of worker goroutines under one
// shared mutex.
//
// Grounded on the teacher's mcts package (tree.go's arena, node.go's
// mutex-guarded Select/accumulate, search.go's worker loop), adapted
// from PUCT-over-a-policy-network to UCB1-over-a-random-rollout, since
// this search has no neural evaluator.
package mcts

import (
	"log"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"reversi/board"
	"reversi/game"
)

// Exploration and fast-stop constants, fixed by spec rather than
// exposed as tunables (the original keeps them as file-scope consts
// too).
const (
	explorationConstant = 2.0
	expandThreshold     = 1
	fastStopThreshold   = float32(0.1)
	fastStopBranchK     = float32(0.01)
	fastStopFloor       = float32(0.5)

	defaultSearchTime = time.Second
)

// TreeDumper is the interface a diagnostic tree-dump writer (see the
// treedump package) implements. The Controller calls it, if
// configured, after each Search; core search correctness never
// depends on it.
type TreeDumper interface {
	Dump(root *NodeView) error
	Close() error
}

// NodeView is a read-only snapshot of a tree node and its children,
// exported so diagnostic consumers don't need access to the
// unexported TreeNode fields or the controller's mutex.
type NodeView struct {
	Move     int
	Visit    uint32
	WinRate  float32
	Score    float32
	Children []*NodeView
}

// Config configures a Controller. The zero value is usable: it runs
// one worker per CPU with the default one-second search budget and no
// logging or tree dump.
type Config struct {
	// Threads is the number of worker goroutines Search runs. <= 0
	// means runtime.NumCPU() (hardware parallelism), matching
	// spec.md's THREAD_NUM default.
	Threads int
	// SearchTime bounds how long Search runs before converging. <= 0
	// means defaultSearchTime (1s), matching spec.md's SEARCH_TIME.
	SearchTime time.Duration
	Logger     *log.Logger
	Dumper     TreeDumper
}

// DefaultConfig returns the spec's default parameters: hardware
// parallelism worker count, a one-second search budget, no logging or
// dump.
func DefaultConfig() Config {
	return Config{Threads: runtime.NumCPU(), SearchTime: defaultSearchTime}
}

// Controller runs MCTS searches against a shared NodePool, serializing
// all tree mutation behind one process-wide mutex while rollouts run
// unlocked on thread-local GameState snapshots.
type Controller struct {
	cfg  Config
	pool NodePool

	mu       sync.Mutex
	root     *TreeNode
	rootSide board.Side

	weightsMu sync.Mutex
	weights   []float64

	fastStopCount int64
	fastStopSteps int64
}

// New builds a Controller from cfg.
func New(cfg Config) *Controller {
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	if cfg.SearchTime <= 0 {
		cfg.SearchTime = defaultSearchTime
	}
	return &Controller{cfg: cfg}
}

// Stats summarizes the most recent Search's rollout diagnostics.
type Stats struct {
	Iterations          int
	FastStopCount       int64
	FastStopSteps       int64
	MeanRolloutWeight   float64
	StdDevRolloutWeight float64
}

// Stats returns diagnostics gathered during the last Search call.
// Mean/StdDev are computed with gonum/stat over the per-rollout
// fast-stop weight series; the teacher used gonum for its Dirichlet
// root-noise instead, but this search has no policy to perturb.
func (c *Controller) Stats() Stats {
	c.weightsMu.Lock()
	defer c.weightsMu.Unlock()
	s := Stats{
		Iterations:    len(c.weights),
		FastStopCount: atomic.LoadInt64(&c.fastStopCount),
		FastStopSteps: atomic.LoadInt64(&c.fastStopSteps),
	}
	if len(c.weights) > 0 {
		s.MeanRolloutWeight, s.StdDevRolloutWeight = stat.MeanStdDev(c.weights, nil)
	}
	return s
}

// Close releases the pool's free list and closes the configured
// dumper, if any, aggregating errors the way the teacher's agent.Close
// aggregates inferer-close failures.
func (c *Controller) Close() error {
	c.pool.Drop()
	if c.cfg.Dumper == nil {
		return nil
	}
	var result *multierror.Error
	if err := c.cfg.Dumper.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func isNonTerminal(gs *game.GameState) bool {
	return gs.Status == game.Normal || gs.Status == game.Pass
}

// pendingMoves returns the moves tree_policy must still try expanding
// from gs: the legal-move list for a Normal position, or the single
// forced pass (game.NoMove) for a Pass position. A Pass GameState's
// own LegalMoves is always empty — RecomputeLegalMoves has nothing to
// offer the side to move — but the tree still needs one child
// representing "play the pass", or a Pass node would be a non-terminal
// leaf with nothing left to expand.
func pendingMoves(gs *game.GameState) []int {
	if gs.Status == game.Pass {
		return []int{game.NoMove}
	}
	return gs.LegalMoves
}

// Search runs one MCTS search rooted at callerState and returns the
// chosen move id, or game.NoMove if no search is needed or possible:
// callerState is a Pass node (the caller must play the forced pass
// itself) or already terminal.
func (c *Controller) Search(callerState *game.GameState) int {
	if callerState.Status == game.Pass || callerState.IsTerminal() {
		return game.NoMove
	}

	root := c.pool.Allocate(nil)
	callerState.CopyInto(root.Game)
	root.untried = append(root.untried[:0], pendingMoves(root.Game)...)

	c.root = root
	c.rootSide = root.Game.SideToMove()

	c.weightsMu.Lock()
	c.weights = c.weights[:0]
	c.weightsMu.Unlock()
	atomic.StoreInt64(&c.fastStopCount, 0)
	atomic.StoreInt64(&c.fastStopSteps, 0)

	deadline := time.Now().Add(c.cfg.SearchTime)

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Threads; i++ {
		wg.Add(1)
		seed := uint64(time.Now().UnixNano()) ^ uint64(i)*0x9E3779B97F4A7C15
		go c.worker(&wg, deadline, seed)
	}
	wg.Wait()

	best := c.bestChild(root, 0)
	move := best.Game.LastMove

	if c.cfg.Dumper != nil {
		view := c.snapshot(root, 0)
		if err := c.cfg.Dumper.Dump(view); err != nil && c.cfg.Logger != nil {
			c.cfg.Logger.Printf("treedump: %v", err)
		}
	}

	c.recycleSubtree(root)
	c.root = nil
	return move
}

func (c *Controller) worker(wg *sync.WaitGroup, deadline time.Time, seed uint64) {
	defer wg.Done()
	rng := rand.New(rand.NewSource(seed))
	scratch := &game.GameState{Board: board.New()}

	for {
		c.mu.Lock()
		leaf := c.treePolicy(c.root, rng)
		leaf.Game.CopyInto(scratch)
		leafTurn := leaf.Game.Turn
		c.mu.Unlock()

		weight, value := c.defaultPolicy(scratch, leafTurn, rng)

		c.weightsMu.Lock()
		c.weights = append(c.weights, float64(weight))
		c.weightsMu.Unlock()

		c.mu.Lock()
		c.backpropagate(leaf, value)
		if !time.Now().Before(deadline) {
			mostVisited := argMaxVisit(c.root.children)
			bestScored := c.bestChild(c.root, 0)
			done := mostVisited == bestScored
			c.mu.Unlock()
			if done {
				return
			}
			continue
		}
		c.mu.Unlock()
	}
}

// treePolicy descends from node, expanding one untried move (picked
// uniformly at random) at the first node that has any and returning
// the new child, or returning node itself once an
// unvisited or terminal node is reached. Called under c.mu.
func (c *Controller) treePolicy(node *TreeNode, rng *rand.Rand) *TreeNode {
	for isNonTerminal(node.Game) {
		if node.visit < expandThreshold {
			return node
		}
		if len(node.untried) > 0 {
			idx := rng.Intn(len(node.untried))
			last := len(node.untried) - 1
			node.untried[idx], node.untried[last] = node.untried[last], node.untried[idx]
			move := node.untried[last]
			node.untried = node.untried[:last]

			child := c.pool.Allocate(node)
			node.Game.CopyInto(child.Game)
			child.Game.Put(move)
			child.untried = append(child.untried[:0], pendingMoves(child.Game)...)
			node.children = append(node.children, child)
			return child
		}
		node = c.bestChild(node, explorationConstant)
	}
	return node
}

// bestChild picks node's child maximizing winRate + expandFactor *
// sqrt(log(node.visit)) * cExplore, the UCB1 score. cExplore == 0
// degenerates to a pure exploitation pick, used for the final move
// choice after Search's budget is spent.
func (c *Controller) bestChild(node *TreeNode, cExplore float64) *TreeNode {
	if len(node.children) == 0 {
		return nil
	}
	logParent := math32.Log(float32(node.visit))
	var best *TreeNode
	bestScore := float32(math.Inf(-1))
	for _, child := range node.children {
		score := child.winRate + child.expandFactor*math32.Sqrt(logParent)*float32(cExplore)
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

func argMaxVisit(children []*TreeNode) *TreeNode {
	if len(children) == 0 {
		return nil
	}
	best := children[0]
	for _, child := range children[1:] {
		if child.visit > best.visit {
			best = child
		}
	}
	return best
}

// defaultPolicy runs a randomized playout to completion from scratch,
// applying the fast-stop rule: before each move, the decay weight is
// multiplied by a per-branching-factor shrink (floored at
// fastStopFloor), and once the weight drops below fastStopThreshold
// the rollout is force-terminated via FastStopWinner instead of played
// out to the real end. Returns the decay weight (for diagnostics) and
// the backprop value (raw-0.5)*weight+0.5, where raw is 1 for a
// rootSide win and 0 for a loss or a draw. Runs unlocked.
func (c *Controller) defaultPolicy(scratch *game.GameState, leafTurn int, rng *rand.Rand) (float32, float32) {
	weight := float32(1.0)
	for isNonTerminal(scratch) {
		factor := 1 - fastStopBranchK*float32(len(scratch.LegalMoves))
		if factor < fastStopFloor {
			factor = fastStopFloor
		}
		weight *= factor
		scratch.PutRandom(rng)

		if weight < fastStopThreshold {
			atomic.AddInt64(&c.fastStopCount, 1)
			atomic.AddInt64(&c.fastStopSteps, int64(scratch.Turn-leafTurn))
			scratch.ForceStatus(scratch.FastStopWinner())
			break
		}
	}

	var raw float32
	switch scratch.Status {
	case game.BlackWin:
		if c.rootSide == board.SideBlack {
			raw = 1
		}
	case game.WhiteWin:
		if c.rootSide == board.SideWhite {
			raw = 1
		}
	}
	return weight, (raw-0.5)*weight + 0.5
}

// backpropagate walks from node to the root, updating visit/value
// counts and the UCB1 inputs (winRate, expandFactor) derived from
// them. winRate is stored from the perspective of the player who moved
// into that node (the opponent of its side to move), so bestChild at
// the parent favors the mover's best reply. Called under c.mu.
func (c *Controller) backpropagate(node *TreeNode, value float32) {
	for node != nil {
		node.visit++
		node.value += value
		node.expandFactor = math32.Sqrt(1.0 / float32(node.visit))

		winRate := node.value / float32(node.visit)
		if node.Game.SideToMove() == c.rootSide {
			winRate = 1 - winRate
		}
		node.winRate = winRate

		node = node.parent
	}
}

func (c *Controller) recycleSubtree(node *TreeNode) {
	for _, child := range node.children {
		c.recycleSubtree(child)
	}
	c.pool.Recycle(node)
}

// snapshot builds a read-only NodeView of node's subtree for treedump,
// recording each child's current UCB1 score at cExplore so the dump
// reflects the same numbers bestChild would have used.
func (c *Controller) snapshot(node *TreeNode, cExplore float64) *NodeView {
	view := &NodeView{
		Move:    node.Game.LastMove,
		Visit:   node.visit,
		WinRate: node.winRate,
	}
	if len(node.children) == 0 {
		return view
	}
	logParent := math32.Log(float32(node.visit))
	view.Children = make([]*NodeView, len(node.children))
	for i, child := range node.children {
		childView := c.snapshot(child, cExplore)
		childView.Score = child.winRate + child.expandFactor*math32.Sqrt(logParent)*float32(cExplore)
		view.Children[i] = childView
	}
	return view
}
