package gallery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	t.Parallel()

	src, err := ParseSource("gs://club-assets/gallery/manifest.json")
	require.NoError(t, err)
	gcs, ok := src.(*GCSSource)
	require.True(t, ok)
	require.Equal(t, "club-assets", gcs.Bucket)
	require.Equal(t, "gallery/manifest.json", gcs.Object)
	require.Equal(t, "gs://club-assets/gallery/manifest.json", src.String())

	src, err = ParseSource("https://example.org/gallery/manifest.json")
	require.NoError(t, err)
	require.IsType(t, &HTTPSource{}, src)

	src, err = ParseSource("public/gallery/manifest.json")
	require.NoError(t, err)
	require.Equal(t, FileSource("public/gallery/manifest.json"), src)

	_, err = ParseSource("gs://bucket-only")
	require.Error(t, err)
	_, err = ParseSource("  ")
	require.Error(t, err)
}

func TestLoadManifestFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Match":["c.jpg"]}`), 0o644))

	m, err := LoadManifest(context.Background(), FileSource(path))
	require.NoError(t, err)
	require.Equal(t, []string{"c.jpg"}, m.Files("Match"))

	_, err = LoadManifest(context.Background(), FileSource(filepath.Join(t.TempDir(), "missing.json")))
	require.ErrorIs(t, err, ErrManifestUnavailable)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadManifestOverHTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gallery/manifest.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"Training":["a.jpg","b.jpg"]}`))
		case "/broken.json":
			_, _ = w.Write([]byte(`<html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	m, err := LoadManifest(context.Background(), &HTTPSource{URL: srv.URL + "/gallery/manifest.json"})
	require.NoError(t, err)
	require.Equal(t, 2, m.Total())

	_, err = LoadManifest(context.Background(), &HTTPSource{URL: srv.URL + "/missing.json"})
	require.ErrorIs(t, err, ErrManifestUnavailable)

	_, err = LoadManifest(context.Background(), &HTTPSource{URL: srv.URL + "/broken.json"})
	require.ErrorIs(t, err, ErrManifestUnavailable)
}

func TestRandomizerLoadKeepsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"Team":["t.jpg"]}`), 0o644))

	r := NewRandomizer()
	err := r.Load(context.Background(), FileSource(filepath.Join(dir, "nope.json")))
	require.ErrorIs(t, err, ErrManifestUnavailable)
	_, err = r.AllView(context.Background(), NewMapStore())
	require.ErrorIs(t, err, ErrManifestUnavailable)

	require.NoError(t, r.Load(context.Background(), FileSource(good)))
	err = r.Load(context.Background(), FileSource(filepath.Join(dir, "nope.json")))
	require.Error(t, err)

	view, err := r.CategoryView(context.Background(), nil, "team")
	require.NoError(t, err)
	require.Equal(t, []Entry{{Category: "Team", Filename: "t.jpg"}}, view)
}
