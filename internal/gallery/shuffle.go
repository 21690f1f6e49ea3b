package gallery

import "math/rand/v2"

// IntN returns a uniformly chosen integer in [0, n). It must be safe for concurrent use when
// shared by HTTP handlers.
type IntN func(n int) int

// DefaultIntN is backed by the process-wide math/rand/v2 generator.
var DefaultIntN IntN = rand.IntN

// Shuffle permutes s in place with a Fisher–Yates pass: for i from the last index down to 1,
// swap s[i] with s[j] where j is uniform in [0, i]. Slices of length 0 or 1 are left as is
// because the loop body never runs.
func Shuffle[T any](s []T, intn IntN) {
	if intn == nil {
		intn = DefaultIntN
	}
	for i := len(s) - 1; i >= 1; i-- {
		j := intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
