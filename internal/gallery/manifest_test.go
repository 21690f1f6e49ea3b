package gallery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseManifestPreservesOrder(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte(`{"Training":["a.jpg","b.jpg"],"Match":["c.jpg"],"Community":[]}`))
	require.NoError(t, err)
	require.Equal(t, []string{"Training", "Match", "Community"}, m.Keys())
	require.Equal(t, []string{"a.jpg", "b.jpg"}, m.Files("Training"))
	require.Equal(t, 3, m.Total())
	require.Equal(t, []Entry{
		{Category: "Training", Filename: "a.jpg"},
		{Category: "Training", Filename: "b.jpg"},
		{Category: "Match", Filename: "c.jpg"},
	}, m.Flatten())

	out, err := json.Marshal(m)
	require.NoError(t, err)
	require.JSONEq(t, `{"Training":["a.jpg","b.jpg"],"Match":["c.jpg"],"Community":[]}`, string(out))

	again, err := ParseManifest(out)
	require.NoError(t, err)
	require.Equal(t, m.Keys(), again.Keys())
}

func TestParseManifestRejectsWrongShape(t *testing.T) {
	t.Parallel()

	for name, doc := range map[string]string{
		"empty":        ``,
		"array":        `["a.jpg"]`,
		"null":         `null`,
		"string value": `{"Match":"a.jpg"}`,
		"number items": `{"Match":[1,2]}`,
		"truncated":    `{"Match":["a.jpg"`,
	} {
		_, err := ParseManifest([]byte(doc))
		require.Error(t, err, name)
	}
}

func TestManifestLookupIgnoresCase(t *testing.T) {
	t.Parallel()

	m, err := ParseManifest([]byte(`{"Match":["x","y","z"]}`))
	require.NoError(t, err)

	key, files, ok := m.Lookup("match")
	require.True(t, ok)
	require.Equal(t, "Match", key)
	require.Equal(t, []string{"x", "y", "z"}, files)

	_, _, ok = m.Lookup("Players")
	require.False(t, ok)
}

func TestManifestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	m := NewManifest()
	m.Set("Team", []string{"t1.jpg"})
	c := m.Clone()
	c.Set("Team", []string{"t1.jpg", "t2.jpg"})
	c.Set("Match", nil)

	require.Equal(t, []string{"t1.jpg"}, m.Files("Team"))
	require.False(t, m.Has("Match"))

	out, err := json.Marshal(c)
	require.NoError(t, err)
	require.JSONEq(t, `{"Team":["t1.jpg","t2.jpg"],"Match":[]}`, string(out))
	require.Equal(t, []string{"Team", "Match"}, c.Keys())
}

func TestEmptyManifestMarshalsAsObject(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(NewManifest())
	require.NoError(t, err)
	require.Equal(t, `{}`, string(out))
	require.Empty(t, NewManifest().Flatten())
	require.NotNil(t, NewManifest().Flatten())
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, ok := ParseCategory(" training ")
	require.True(t, ok)
	require.Equal(t, CategoryTraining, c)
	require.Equal(t, "training", c.Slug())

	_, ok = ParseCategory("Mascots")
	require.False(t, ok)
	_, ok = ParseCategory("")
	require.False(t, ok)

	require.True(t, IsAll(""))
	require.True(t, IsAll("ALL"))
	require.False(t, IsAll("match"))
	require.Len(t, Categories(), 5)
}
