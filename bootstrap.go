package canopy

import "github.com/canopyml/canopy/prng"

/*
bootstrap draws n instance indices with replacement from [0, n) and
returns them together with the out-of-bag indices, the ones the draw
never touched, in ascending order.
*/
func bootstrap(rng *prng.Source, n int) ([]int, []int) {
	indices := make([]int, n)
	inBag := make([]bool, n)
	for i := 0; i < n; i++ {
		index := rng.Intn(n)
		indices[i] = index
		inBag[index] = true
	}
	var oob []int
	for i, in := range inBag {
		if !in {
			oob = append(oob, i)
		}
	}
	return indices, oob
}
