/*
Package prng implements the pseudo-random generator used for bootstrap
sampling, feature subsetting and shuffling. Model training must be
reproducible across machines and builds for a given seed, so the
generator is spelled out here instead of relying on a platform one:
the sequence a seed produces is part of the model's contract.

The generator is the 32-bit Mersenne Twister (MT19937).
*/
package prng

const (
	mtN         = 624
	mtM         = 397
	mtMatrixA   = 0x9908b0df
	mtUpperMask = 0x80000000
	mtLowerMask = 0x7fffffff
)

// DefaultSeed is used when a caller does not provide one.
const DefaultSeed uint32 = 999

/*
Source is an independent pseudo-random stream. Each training worker
owns its own Source; a Source must not be shared across goroutines.
*/
type Source struct {
	state [mtN]uint32
	index int
}

/*
New returns a Source seeded with the given value. Two Sources with the
same seed produce identical sequences on every platform.
*/
func New(seed uint32) *Source {
	s := &Source{index: mtN}
	s.state[0] = seed
	for i := 1; i < mtN; i++ {
		s.state[i] = 1812433253*(s.state[i-1]^(s.state[i-1]>>30)) + uint32(i)
	}
	return s
}

/*
Uint32 returns the next value of the stream.
*/
func (s *Source) Uint32() uint32 {
	if s.index >= mtN {
		s.generate()
	}
	y := s.state[s.index]
	s.index++
	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

func (s *Source) generate() {
	for i := 0; i < mtN; i++ {
		y := (s.state[i] & mtUpperMask) | (s.state[(i+1)%mtN] & mtLowerMask)
		next := s.state[(i+mtM)%mtN] ^ (y >> 1)
		if y&1 != 0 {
			next ^= mtMatrixA
		}
		s.state[i] = next
	}
	s.index = 0
}

/*
Intn returns a value in [0, n) as a modulo draw on the stream.
The draw consumes exactly one generator step, so index sequences
stay aligned with other implementations of the same scheme.
Intn panics if n is not positive.
*/
func (s *Source) Intn(n int) int {
	if n <= 0 {
		panic("prng: Intn called with non-positive n")
	}
	return int(s.Uint32() % uint32(n))
}

/*
Shuffle permutes n elements in place using Fisher-Yates with modulo
index draws. swap exchanges the elements at the two given indices.
*/
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := int(s.Uint32() % uint32(i+1))
		swap(i, j)
	}
}
