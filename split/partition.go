package split

import (
	"github.com/ar90n/dectree/dataset"
	"github.com/cockroachdb/errors"
)

var ErrMalformedPixel = errors.New("pixel is neither 0 nor 255")

// Partition distributes indice by the value of pixel: dataset.Black goes
// left and dataset.White goes right. Indices holding any other value are
// returned in rejected. Relative order is kept in all three slices.
func Partition(data *dataset.Dataset, indice []int, pixel int) (left, right, rejected []int) {
	left = make([]int, 0, len(indice))
	right = make([]int, 0, len(indice))
	for _, i := range indice {
		switch data.Images[i].Pixels[pixel] {
		case dataset.Black:
			left = append(left, i)
		case dataset.White:
			right = append(right, i)
		default:
			rejected = append(rejected, i)
		}
	}

	return left, right, rejected
}
