package render

import (
	"fmt"
	"io"

	"github.com/ar90n/dectree/dataset"
	"github.com/ar90n/dectree/tree"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

var ErrUnknownFormat = errors.New("unknown render format")

func ParseFormat(name string) (graphviz.Format, error) {
	switch name {
	case "dot":
		return graphviz.XDOT, nil
	case "svg":
		return graphviz.SVG, nil
	case "png":
		return graphviz.PNG, nil
	case "jpg":
		return graphviz.JPG, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q", name)
	}
}

// Tree draws root as a graph. Split nodes show the tested pixel and their
// edges the pixel value leading to each child.
func Tree(root tree.Node, format graphviz.Format, w io.Writer) error {
	if root == nil {
		return tree.ErrNilTree
	}

	g := graphviz.New()
	defer g.Close()

	graph, err := g.Graph()
	if err != nil {
		return err
	}
	defer graph.Close()

	r := renderer{graph: graph}
	if _, err := r.add(root); err != nil {
		return err
	}

	return g.Render(graph, format, w)
}

type renderer struct {
	graph *cgraph.Graph
	nodes int
	edges int
}

func (r *renderer) add(node tree.Node) (*cgraph.Node, error) {
	name := fmt.Sprintf("n%d", r.nodes)
	r.nodes++

	gn, err := r.graph.CreateNode(name)
	if err != nil {
		return nil, err
	}

	switch n := node.(type) {
	case *tree.Leaf:
		if n == nil {
			return nil, tree.ErrNilTree
		}
		gn.SetShape(cgraph.BoxShape)
		gn.SetLabel(fmt.Sprintf("label %d", n.Label))
		return gn, nil
	case *tree.Split:
		if n == nil {
			return nil, tree.ErrNilTree
		}
		x, y := n.Pixel%dataset.Width, n.Pixel/dataset.Width
		gn.SetLabel(fmt.Sprintf("pixel %d (%d,%d)", n.Pixel, x, y))

		for _, child := range []struct {
			node  tree.Node
			value int
		}{
			{n.Left, dataset.Black},
			{n.Right, dataset.White},
		} {
			if child.node == nil {
				return nil, tree.ErrNilTree
			}
			cn, err := r.add(child.node)
			if err != nil {
				return nil, err
			}
			e, err := r.graph.CreateEdge(fmt.Sprintf("e%d", r.edges), gn, cn)
			if err != nil {
				return nil, err
			}
			r.edges++
			e.SetLabel(fmt.Sprint(child.value))
		}
		return gn, nil
	default:
		return nil, tree.ErrNilTree
	}
}
