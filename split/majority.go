package split

import (
	"github.com/ar90n/dectree/dataset"
)

// Majority returns the most frequent label among indice and its count.
// Ties go to the smallest label; an empty subset yields (0, 0).
func Majority(data *dataset.Dataset, indice []int) (label uint8, freq int) {
	var counts [dataset.NumLabels]int
	for _, i := range indice {
		counts[data.Labels[i]]++
	}

	for l, c := range counts {
		if freq < c {
			label = uint8(l)
			freq = c
		}
	}
	return label, freq
}
