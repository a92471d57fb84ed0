package tree

import (
	"github.com/ar90n/dectree/dataset"
	"github.com/cockroachdb/errors"
)

var (
	ErrNilTree        = errors.New("nil tree")
	ErrUnclassifiable = errors.New("unclassifiable image")
)

// Classify walks from root to a leaf following img's pixels.
func Classify(root Node, img dataset.Image) (uint8, error) {
	node := root
	for {
		switch n := node.(type) {
		case *Leaf:
			if n == nil {
				return 0, ErrNilTree
			}
			return n.Label, nil
		case *Split:
			if n == nil {
				return 0, ErrNilTree
			}
			if n.Pixel < 0 || len(img.Pixels) <= n.Pixel {
				return 0, errors.Wrapf(ErrUnclassifiable, "image has %d pixels, split needs pixel %d", len(img.Pixels), n.Pixel)
			}

			switch v := img.Pixels[n.Pixel]; v {
			case dataset.Black:
				node = n.Left
			case dataset.White:
				node = n.Right
			default:
				return 0, errors.Wrapf(ErrUnclassifiable, "value %d at pixel %d", v, n.Pixel)
			}
		default:
			return 0, ErrNilTree
		}
	}
}
