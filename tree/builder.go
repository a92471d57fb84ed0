package tree

import (
	"context"
	"fmt"

	"github.com/ar90n/dectree/dataset"
	"github.com/ar90n/dectree/split"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DefaultTerminateRatio is the majority label ratio at or above which a
// subset becomes a leaf.
const DefaultTerminateRatio = 0.95

var ErrEmptyDataset = errors.New("empty dataset")

type Builder struct {
	terminateRatio float64
	strict         bool
	selector       *split.Selector
	logger         *zap.Logger
}

func NewBuilder() *Builder {
	return &Builder{
		terminateRatio: DefaultTerminateRatio,
		selector:       split.NewSelector(),
		logger:         zap.NewNop(),
	}
}

func (b *Builder) SetTerminateRatio(ratio float64) *Builder {
	b.terminateRatio = ratio
	return b
}

func (b *Builder) SetMaxGoroutines(maxGoroutines uint) *Builder {
	b.selector.SetMaxGoroutines(maxGoroutines)
	return b
}

// SetStrict makes a pixel that is neither black nor white fail the build
// instead of dropping the image from the subset.
func (b *Builder) SetStrict(strict bool) *Builder {
	b.strict = strict
	return b
}

func (b *Builder) SetLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

func (b Builder) TerminateRatio() float64 {
	return b.terminateRatio
}

func (b Builder) ParameterString() string {
	return fmt.Sprintf("terminateRatio=%g_strict=%t_maxGoroutines=%d", b.terminateRatio, b.strict, b.selector.MaxGoroutines())
}

// Build grows a tree over every image of data.
func (b *Builder) Build(ctx context.Context, data *dataset.Dataset) (Node, error) {
	if data.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if !(0.0 < b.terminateRatio && b.terminateRatio <= 1.0) {
		return nil, errors.Newf("terminate ratio %g out of (0, 1]", b.terminateRatio)
	}

	indice := lo.Range(data.Len())
	return b.buildSubTree(ctx, data, indice)
}

func (b *Builder) buildSubTree(ctx context.Context, data *dataset.Dataset, indice []int) (Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	label, freq := split.Majority(data, indice)
	nIndice := len(indice)
	if nIndice == 0 {
		return &Leaf{Label: label}, nil
	}
	if b.terminateRatio <= float64(freq)/float64(nIndice) {
		return &Leaf{Label: label}, nil
	}

	pixel, err := b.selector.Best(ctx, data, indice)
	if err != nil {
		return nil, err
	}

	left, right, rejected := split.Partition(data, indice, pixel)
	if 0 < len(rejected) {
		if b.strict {
			i := rejected[0]
			return nil, errors.Wrapf(split.ErrMalformedPixel, "image %d has value %d at pixel %d", i, data.Images[i].Pixels[pixel], pixel)
		}
		for _, i := range rejected {
			b.logger.Warn("dropping image with malformed pixel",
				zap.Int("image", i),
				zap.Int("pixel", pixel),
				zap.Uint8("value", data.Images[i].Pixels[pixel]),
			)
		}
	}

	// the best pixel does not separate this subset, so no split can make progress
	if len(left) == nIndice || len(right) == nIndice {
		b.logger.Debug("no discriminating pixel", zap.Int("subset", nIndice), zap.Uint8("label", label))
		return &Leaf{Label: label}, nil
	}

	leftNode, err := b.buildSubTree(ctx, data, left)
	if err != nil {
		return nil, err
	}
	rightNode, err := b.buildSubTree(ctx, data, right)
	if err != nil {
		return nil, err
	}

	return &Split{
		Pixel: pixel,
		Left:  leftNode,
		Right: rightNode,
	}, nil
}
