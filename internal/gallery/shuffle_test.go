package gallery

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) IntN {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).IntN
}

func TestShuffleIsPermutation(t *testing.T) {
	t.Parallel()

	intn := seeded(7)
	for n := 0; n <= 40; n++ {
		in := make([]int, n)
		for i := range in {
			in[i] = i % 5 // repeated values exercise multiset equality
		}
		out := slices.Clone(in)
		Shuffle(out, intn)

		require.Len(t, out, n)
		a, b := slices.Clone(in), slices.Clone(out)
		slices.Sort(a)
		slices.Sort(b)
		require.Equal(t, a, b, "n=%d", n)
	}
}

func TestShuffleShortInputsNeverDrawRandomness(t *testing.T) {
	t.Parallel()

	never := func(int) int {
		t.Fatal("random source must not be used for slices shorter than two")
		return 0
	}
	var empty []Entry
	Shuffle(empty, never)
	require.Empty(t, empty)

	one := []Entry{{Category: "Match", Filename: "a.jpg"}}
	Shuffle(one, never)
	require.Equal(t, []Entry{{Category: "Match", Filename: "a.jpg"}}, one)
}

func TestShuffleDrawsFromShrinkingRange(t *testing.T) {
	t.Parallel()

	var bounds []int
	record := func(n int) int {
		bounds = append(bounds, n)
		return n - 1 // swap with itself: identity permutation
	}
	in := []string{"a", "b", "c", "d"}
	Shuffle(in, record)

	require.Equal(t, []int{4, 3, 2}, bounds)
	require.Equal(t, []string{"a", "b", "c", "d"}, in)
}

func TestShuffleUniformity(t *testing.T) {
	t.Parallel()

	const trials = 24000
	intn := seeded(42)
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		s := []string{"a", "b", "c", "d"}
		Shuffle(s, intn)
		counts[strings.Join(s, "")]++
	}
	require.Len(t, counts, 24, "every ordering of four elements must occur")

	expected := float64(trials) / 24
	var chi2 float64
	for _, observed := range counts {
		d := float64(observed) - expected
		chi2 += d * d / expected
	}
	// 23 degrees of freedom; 60 is far past the 0.1% critical value of 49.7.
	require.Less(t, chi2, 60.0, "chi-square statistic too large: %.2f", chi2)
}
