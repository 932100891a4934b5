package dataset

import "math"

/*
Stats accumulates a running mean and variance over a stream of values
using Welford's single-pass algorithm. The zero value is ready to use.
*/
type Stats struct {
	count int
	mean  float64
	m2    float64
}

/*
Add folds a value into the accumulator.
*/
func (s *Stats) Add(value float32) {
	s.count++
	delta := float64(value) - s.mean
	s.mean += delta / float64(s.count)
	s.m2 += delta * (float64(value) - s.mean)
}

/*
Count returns the number of values seen so far.
*/
func (s *Stats) Count() int {
	return s.count
}

/*
Mean returns the mean of the values seen so far, or 0 if none have
been added.
*/
func (s *Stats) Mean() float32 {
	return float32(s.mean)
}

/*
SumOfSquares returns the sum of squared deviations of the values seen
so far from their mean.
*/
func (s *Stats) SumOfSquares() float64 {
	return s.m2
}

/*
StdDev returns the sample standard deviation of the values seen so
far. It is 0 until at least two values have been added.
*/
func (s *Stats) StdDev() float32 {
	if s.count < 2 {
		return 0
	}
	return float32(math.Sqrt(s.m2 / float64(s.count-1)))
}
