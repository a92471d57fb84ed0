package split

import (
	"context"
	"runtime"

	"github.com/ar90n/dectree/dataset"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
)

// pixels evaluated by one goroutine
const chunkSize = 56

var ErrEmptySubset = errors.New("empty subset")

// Selector finds the pixel whose split has the lowest Gini impurity.
type Selector struct {
	maxGoroutines int
}

func NewSelector() *Selector {
	return &Selector{
		maxGoroutines: runtime.NumCPU(),
	}
}

// SetMaxGoroutines bounds the number of goroutines evaluating pixels.
// 0 means runtime.NumCPU() and 1 evaluates every pixel on the caller's goroutine.
func (s *Selector) SetMaxGoroutines(maxGoroutines uint) *Selector {
	if maxGoroutines == 0 {
		s.maxGoroutines = runtime.NumCPU()
	} else {
		s.maxGoroutines = int(maxGoroutines)
	}
	return s
}

func (s *Selector) MaxGoroutines() int {
	return s.maxGoroutines
}

// Best returns the pixel in [0, dataset.PixelCount) minimising Gini. Every
// pixel is evaluated and ties go to the smallest pixel index.
func (s *Selector) Best(ctx context.Context, data *dataset.Dataset, indice []int) (int, error) {
	if len(indice) == 0 {
		return 0, ErrEmptySubset
	}

	scores, err := s.Scores(ctx, data, indice)
	if err != nil {
		return 0, err
	}

	best := 0
	for pixel := 1; pixel < len(scores); pixel++ {
		if scores[pixel] < scores[best] {
			best = pixel
		}
	}
	return best, nil
}

// Scores returns the Gini impurity of every pixel.
func (s *Selector) Scores(ctx context.Context, data *dataset.Dataset, indice []int) ([]float64, error) {
	scores := make([]float64, dataset.PixelCount)
	if s.maxGoroutines <= 1 {
		for pixel := range scores {
			scores[pixel] = Gini(data, indice, pixel)
		}
		return scores, ctx.Err()
	}

	p := pool.New().WithMaxGoroutines(s.maxGoroutines).WithContext(ctx)
	for beg := 0; beg < len(scores); beg += chunkSize {
		beg := beg
		end := min(beg+chunkSize, len(scores))
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for pixel := beg; pixel < end; pixel++ {
				scores[pixel] = Gini(data, indice, pixel)
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return scores, nil
}
