package tree

import (
	"github.com/ar90n/dectree/dataset"
)

type Stats struct {
	Nodes  int `yaml:"nodes"`
	Leaves int `yaml:"leaves"`
	Splits int `yaml:"splits"`
	Depth  int `yaml:"depth"`

	// LeavesPerLabel counts the leaves predicting each label.
	LeavesPerLabel map[uint8]int `yaml:"leaves_per_label"`
	// PixelUsage counts the splits testing each pixel.
	PixelUsage map[int]int `yaml:"pixel_usage"`
}

// Collect walks the tree and gathers its Stats. A single leaf has depth 0.
func Collect(root Node) Stats {
	stats := Stats{
		LeavesPerLabel: make(map[uint8]int, dataset.NumLabels),
		PixelUsage:     make(map[int]int),
	}

	var walk func(node Node, depth int)
	walk = func(node Node, depth int) {
		switch n := node.(type) {
		case *Leaf:
			if n == nil {
				return
			}
			stats.Leaves++
			stats.LeavesPerLabel[n.Label]++
		case *Split:
			if n == nil {
				return
			}
			stats.Splits++
			stats.PixelUsage[n.Pixel]++
			walk(n.Left, depth+1)
			walk(n.Right, depth+1)
		default:
			return
		}

		stats.Nodes++
		if stats.Depth < depth {
			stats.Depth = depth
		}
	}
	walk(root, 0)

	return stats
}
