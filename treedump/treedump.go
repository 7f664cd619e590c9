// Package treedump renders an MCTS search tree as a graphviz DOT file,
// for the out-of-core-scope diagnostic the original's fprintf tree
// dump produced (MCTS.log / MCTS_FULL.log). It implements
// mcts.TreeDumper but is never imported by mcts, and the Controller
// runs fine with no Writer configured at all.
package treedump

import (
	"fmt"
	"io"
	"os"

	"github.com/awalterschulze/gographviz"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"reversi/mcts"
)

// Writer writes a full dump to FullPath and a depth/width-truncated
// summary dump (top ChildLimit children per node, down to MaxDepth) to
// SummaryPath. Either path may be empty to skip that file.
type Writer struct {
	FullPath    string
	SummaryPath string
	ChildLimit  int
	MaxDepth    int

	full    io.WriteCloser
	summary io.WriteCloser
}

// defaults, matching the spec's "top-3 children, truncated depth"
// description of MCTS.log.
const (
	defaultChildLimit = 3
	defaultMaxDepth   = 4
)

// Open creates the configured output files. Call Close when done.
func (w *Writer) Open() error {
	if w.ChildLimit <= 0 {
		w.ChildLimit = defaultChildLimit
	}
	if w.MaxDepth <= 0 {
		w.MaxDepth = defaultMaxDepth
	}
	if w.FullPath != "" {
		f, err := os.Create(w.FullPath)
		if err != nil {
			return errors.Wrap(err, "treedump: open full dump")
		}
		w.full = f
	}
	if w.SummaryPath != "" {
		f, err := os.Create(w.SummaryPath)
		if err != nil {
			return errors.Wrap(err, "treedump: open summary dump")
		}
		w.summary = f
	}
	return nil
}

// Dump renders root to both configured outputs.
func (w *Writer) Dump(root *mcts.NodeView) error {
	if w.full != nil {
		if err := render(w.full, root, -1, -1); err != nil {
			return errors.Wrap(err, "treedump: full dump")
		}
	}
	if w.summary != nil {
		if err := render(w.summary, root, w.ChildLimit, w.MaxDepth); err != nil {
			return errors.Wrap(err, "treedump: summary dump")
		}
	}
	return nil
}

// Close closes whichever output files were opened, aggregating any
// close errors.
func (w *Writer) Close() error {
	var result *multierror.Error
	if w.full != nil {
		if err := w.full.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "treedump: close full dump"))
		}
	}
	if w.summary != nil {
		if err := w.summary.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "treedump: close summary dump"))
		}
	}
	return result.ErrorOrNil()
}

func render(out io.Writer, root *mcts.NodeView, childLimit, maxDepth int) error {
	graph := gographviz.NewGraph()
	if err := graph.SetName("mcts"); err != nil {
		return err
	}
	if err := graph.SetDir(true); err != nil {
		return err
	}

	counter := 0
	var walk func(node *mcts.NodeView, depth int) string
	walk = func(node *mcts.NodeView, depth int) string {
		id := fmt.Sprintf("n%d", counter)
		counter++
		label := fmt.Sprintf("\"move=%d visit=%d winRate=%.3f\"", node.Move, node.Visit, node.WinRate)
		_ = graph.AddNode("mcts", id, map[string]string{"label": label})

		if maxDepth >= 0 && depth >= maxDepth {
			return id
		}
		children := node.Children
		if childLimit >= 0 && len(children) > childLimit {
			children = topByScore(children, childLimit)
		}
		for _, child := range children {
			childID := walk(child, depth+1)
			edgeLabel := fmt.Sprintf("\"%.4f\"", child.Score)
			_ = graph.AddEdge(id, childID, true, map[string]string{"label": edgeLabel})
		}
		return id
	}
	walk(root, 0)

	_, err := io.WriteString(out, graph.String())
	return err
}

// topByScore returns the childLimit highest-Score entries of children,
// without disturbing the caller's slice.
func topByScore(children []*mcts.NodeView, limit int) []*mcts.NodeView {
	sorted := append([]*mcts.NodeView(nil), children...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Score > sorted[j-1].Score; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
