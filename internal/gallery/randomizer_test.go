package gallery

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustManifest(t *testing.T, doc string) *Manifest {
	t.Helper()
	m, err := ParseManifest([]byte(doc))
	require.NoError(t, err)
	return m
}

type failingStore struct {
	getErr error
	setErr error
	sets   int
}

func (s *failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, s.getErr
}

func (s *failingStore) Set(context.Context, string, []byte) error {
	s.sets++
	return s.setErr
}

func TestAllViewIsStableWithinSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewRandomizer(WithManifest(mustManifest(t, `{"A":["1","2","3"],"B":["4"]}`)), WithIntN(seeded(3)))
	store := NewMapStore()

	first, err := r.AllView(ctx, store)
	require.NoError(t, err)
	require.Len(t, first, 4)
	require.ElementsMatch(t, []Entry{
		{Category: "A", Filename: "1"},
		{Category: "A", Filename: "2"},
		{Category: "A", Filename: "3"},
		{Category: "B", Filename: "4"},
	}, first)

	second, err := r.AllView(ctx, store)
	require.NoError(t, err)
	require.Equal(t, first, second)

	raw, ok, err := store.Get(ctx, OrderKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, raw)
}

func TestAllViewSurvivesCategoryToggle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewRandomizer(WithManifest(mustManifest(t, `{"Match":["m1","m2","m3"],"Team":["t1","t2"],"Training":["x"]}`)))
	store := NewMapStore()

	before, err := r.CategoryView(ctx, store, All)
	require.NoError(t, err)

	match, err := r.CategoryView(ctx, store, "Match")
	require.NoError(t, err)
	require.Equal(t, []Entry{{"Match", "m1"}, {"Match", "m2"}, {"Match", "m3"}}, match)

	after, err := r.CategoryView(ctx, store, "all")
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestCategoryViewKeepsManifestOrder(t *testing.T) {
	t.Parallel()

	never := func(int) int {
		t.Fatal("category views must not shuffle")
		return 0
	}
	r := NewRandomizer(WithManifest(mustManifest(t, `{"Match":["x","y","z"]}`)), WithIntN(never))

	got, err := r.CategoryView(context.Background(), NewMapStore(), "match")
	require.NoError(t, err)
	require.Equal(t, []Entry{
		{Category: "Match", Filename: "x"},
		{Category: "Match", Filename: "y"},
		{Category: "Match", Filename: "z"},
	}, got)
}

func TestCategoryViewAbsentCategoryIsEmpty(t *testing.T) {
	t.Parallel()

	r := NewRandomizer(WithManifest(mustManifest(t, `{"Match":["x"]}`)))
	got, err := r.CategoryView(context.Background(), NewMapStore(), "Players")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestAllViewEmptyManifest(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{`{}`, `{"Match":[],"Team":[]}`} {
		r := NewRandomizer(WithManifest(mustManifest(t, doc)))
		got, err := r.AllView(context.Background(), NewMapStore())
		require.NoError(t, err)
		require.Empty(t, got, doc)
	}
}

func TestAllViewRecomputesCorruptOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewRandomizer(WithManifest(mustManifest(t, `{"Team":["a","b"]}`)))
	for _, bad := range []string{
		`not json`,
		`null`,
		`{"category":"Team"}`,
		`[{}]`,
		`[{"category":"","filename":""}]`,
		`[{"category":"Team","filename":"a"},{"category":"Team"}]`,
	} {
		store := NewMapStore()
		require.NoError(t, store.Set(ctx, OrderKey, []byte(bad)))

		got, err := r.AllView(ctx, store)
		require.NoError(t, err)
		require.ElementsMatch(t, []Entry{{"Team", "a"}, {"Team", "b"}}, got)

		raw, _, _ := store.Get(ctx, OrderKey)
		decoded, err := decodeOrder(raw)
		require.NoError(t, err)
		require.Equal(t, got, decoded)
	}
}

func TestAllViewReturnsStoredOrderWithoutRevalidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewRandomizer(WithManifest(mustManifest(t, `{"Match":["a","b","c"]}`)))
	store := NewMapStore()

	first, err := r.AllView(ctx, store)
	require.NoError(t, err)

	// A re-fetched manifest leaves the session order stale but stable.
	r.SetManifest(mustManifest(t, `{"Match":["a","b","c","d"],"Team":["t"]}`))
	again, err := r.AllView(ctx, store)
	require.NoError(t, err)
	require.Equal(t, first, again)

	// A fresh session sees the new manifest.
	fresh, err := r.AllView(ctx, NewMapStore())
	require.NoError(t, err)
	require.Len(t, fresh, 5)

	// Clearing the session storage ends the session.
	store.Clear()
	cleared, err := r.AllView(ctx, store)
	require.NoError(t, err)
	require.Len(t, cleared, 5)
}

func TestAllViewToleratesStoreFailures(t *testing.T) {
	t.Parallel()

	r := NewRandomizer(WithManifest(mustManifest(t, `{"Match":["a","b"]}`)))
	store := &failingStore{getErr: errors.New("down"), setErr: errors.New("down")}

	got, err := r.AllView(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 1, store.sets)

	got, err = r.AllView(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestViewsFailWithoutManifest(t *testing.T) {
	t.Parallel()

	r := NewRandomizer()
	_, err := r.AllView(context.Background(), NewMapStore())
	require.ErrorIs(t, err, ErrManifestUnavailable)
	_, err = r.CategoryView(context.Background(), NewMapStore(), "Match")
	require.ErrorIs(t, err, ErrManifestUnavailable)
	_, err = r.CategoryCounts()
	require.ErrorIs(t, err, ErrManifestUnavailable)
}

func TestCategoryCounts(t *testing.T) {
	t.Parallel()

	r := NewRandomizer(WithManifest(mustManifest(t, `{"match":["a","b"],"Team":["t"],"Extra":["e"]}`)))
	counts, err := r.CategoryCounts()
	require.NoError(t, err)
	require.Equal(t, []Count{
		{Name: "all", Slug: "all", Count: 4},
		{Name: "Community", Slug: "community", Count: 0},
		{Name: "Match", Slug: "match", Count: 2},
		{Name: "Players", Slug: "players", Count: 0},
		{Name: "Team", Slug: "team", Count: 1},
		{Name: "Training", Slug: "training", Count: 0},
	}, counts)
}

func TestAllViewShufflesFlattenedManifest(t *testing.T) {
	t.Parallel()

	// Every draw picks index 0, so the result is a known permutation of the flattened order.
	r := NewRandomizer(WithManifest(mustManifest(t, `{"A":["1","2"],"B":["3"]}`)), WithIntN(func(int) int { return 0 }))
	got, err := r.AllView(context.Background(), NewMapStore())
	require.NoError(t, err)

	want := []Entry{{"A", "1"}, {"A", "2"}, {"B", "3"}}
	Shuffle(want, func(int) int { return 0 })
	require.Equal(t, want, got)
	require.False(t, slices.Equal(got, []Entry{{"A", "1"}, {"A", "2"}, {"B", "3"}}))
}
