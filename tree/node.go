package tree

import (
	"encoding/gob"

	"github.com/ar90n/dectree/dataset"
	"github.com/cockroachdb/errors"
)

var ErrInvalidNode = errors.New("invalid node")

// Node is either a *Leaf or a *Split.
type Node interface {
	isNode()
}

type Leaf struct {
	Label uint8
}

// Split sends images whose Pixel is dataset.Black to Left and
// dataset.White to Right.
type Split struct {
	Pixel int
	Left  Node
	Right Node
}

func (*Leaf) isNode()  {}
func (*Split) isNode() {}

var (
	_ Node = (*Leaf)(nil)
	_ Node = (*Split)(nil)
)

// Register makes the node variants known to encoding/gob.
func Register() {
	gob.Register(&Leaf{})
	gob.Register(&Split{})
}

// Validate checks that every split pixel is in [0, dataset.PixelCount), every
// label is below dataset.NumLabels and no node is missing.
func Validate(root Node) error {
	switch node := root.(type) {
	case *Leaf:
		if node == nil {
			return errors.Wrap(ErrInvalidNode, "missing leaf")
		}
		if dataset.NumLabels <= node.Label {
			return errors.Wrapf(ErrInvalidNode, "leaf label %d", node.Label)
		}
		return nil
	case *Split:
		if node == nil {
			return errors.Wrap(ErrInvalidNode, "missing split")
		}
		if node.Pixel < 0 || dataset.PixelCount <= node.Pixel {
			return errors.Wrapf(ErrInvalidNode, "split pixel %d", node.Pixel)
		}
		if err := Validate(node.Left); err != nil {
			return err
		}
		return Validate(node.Right)
	default:
		return errors.Wrap(ErrInvalidNode, "missing child")
	}
}

// Release tears the tree down in post-order, children before their parent,
// and returns the number of released nodes. The tree cannot be walked
// afterwards.
func Release(root Node) int {
	switch node := root.(type) {
	case *Split:
		if node == nil {
			return 0
		}
		n := Release(node.Left) + Release(node.Right)
		node.Left = nil
		node.Right = nil
		return n + 1
	case *Leaf:
		if node == nil {
			return 0
		}
		return 1
	default:
		return 0
	}
}

// Equal reports whether two trees have the same shape, split pixels and labels.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Leaf:
		y, ok := b.(*Leaf)
		return ok && x.Label == y.Label
	case *Split:
		y, ok := b.(*Split)
		return ok && x.Pixel == y.Pixel && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	default:
		return a == nil && b == nil
	}
}
