package split

import (
	"github.com/ar90n/dectree/dataset"
)

// Threshold binarises pixels. Values below it fall into the first group.
const Threshold = 128

// Gini returns the weighted Gini impurity of splitting the images at indice
// on the given pixel. An empty group contributes nothing to the sum.
func Gini(data *dataset.Dataset, indice []int, pixel int) float64 {
	if len(indice) == 0 {
		return 0.0
	}

	var aFreq, bFreq [dataset.NumLabels]int
	aCount, bCount := 0, 0
	for _, i := range indice {
		label := data.Labels[i]
		if data.Images[i].Pixels[pixel] < Threshold {
			aFreq[label]++
			aCount++
		} else {
			bFreq[label]++
			bCount++
		}
	}

	aGini := impurity(aFreq[:], aCount)
	bGini := impurity(bFreq[:], bCount)
	return (aGini*float64(aCount) + bGini*float64(bCount)) / float64(len(indice))
}

func impurity(freq []int, count int) float64 {
	if count == 0 {
		return 0.0
	}

	// sum of p(1-p), which equals 1 - sum of p^2
	acc := 0.0
	for _, f := range freq {
		p := float64(f) / float64(count)
		acc += p * (1.0 - p)
	}
	return acc
}
