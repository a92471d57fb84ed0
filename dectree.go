package dectree

import (
	"context"
	"io"

	"github.com/ar90n/dectree/dataset"
	"github.com/ar90n/dectree/tree"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Model is a trained decision tree over binarised 28x28 images.
type Model struct {
	Root           tree.Node
	TerminateRatio float64
	// Trained is the number of images the tree was grown from.
	Trained int
}

type Evaluation struct {
	Total          int
	Correct        int
	Unclassifiable int
}

func Train(ctx context.Context, data *dataset.Dataset, builder *tree.Builder) (*Model, error) {
	root, err := builder.Build(ctx, data)
	if err != nil {
		return nil, errors.Wrap(err, "build tree")
	}

	return &Model{
		Root:           root,
		TerminateRatio: builder.TerminateRatio(),
		Trained:        data.Len(),
	}, nil
}

func (m *Model) Predict(img dataset.Image) (uint8, error) {
	if m == nil || m.Root == nil {
		return 0, ErrNoTree
	}
	return tree.Classify(m.Root, img)
}

// Evaluate classifies every image of data and counts the correct predictions.
// Images that cannot be classified are logged and counted as wrong.
func (m *Model) Evaluate(data *dataset.Dataset, logger *zap.Logger) (Evaluation, error) {
	if m == nil || m.Root == nil {
		return Evaluation{}, ErrNoTree
	}

	evaluation := Evaluation{Total: data.Len()}
	for i, img := range data.Images {
		label, err := m.Predict(img)
		if err != nil {
			if !errors.Is(err, tree.ErrUnclassifiable) {
				return evaluation, err
			}
			logger.Warn("unclassifiable image", zap.Int("image", i), zap.Error(err))
			evaluation.Unclassifiable++
			continue
		}
		if label == data.Labels[i] {
			evaluation.Correct++
		}
	}

	return evaluation, nil
}

func (m *Model) Stats() tree.Stats {
	return tree.Collect(m.Root)
}

// Release tears the tree down. The model must not be used afterwards.
func (m *Model) Release() int {
	if m == nil {
		return 0
	}
	n := tree.Release(m.Root)
	m.Root = nil
	return n
}

func (m *Model) Save(w io.Writer) error {
	if m == nil || m.Root == nil {
		return ErrNoTree
	}
	return saveModel(m, w)
}

func Load(r io.Reader) (*Model, error) {
	return loadModel(r)
}
