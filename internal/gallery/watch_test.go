package gallery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Match":["a.jpg"]}`), 0o644))

	r := NewRandomizer()
	require.NoError(t, r.Load(context.Background(), FileSource(path)))

	reloaded := make(chan error, 4)
	w, err := NewWatcher(path, r,
		WithDebounce(20*time.Millisecond),
		WithReloadHook(func(err error) { reloaded <- err }),
	)
	require.NoError(t, err)
	w.Start(context.Background())

	// Replace by rename, the way the maintenance tools write the document.
	tmp := filepath.Join(dir, "manifest.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"Match":["a.jpg","b.jpg"]}`), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("manifest was not reloaded")
	}

	m, err := r.Manifest()
	require.NoError(t, err)
	require.Equal(t, []string{"a.jpg", "b.jpg"}, m.Files("Match"))

	require.NoError(t, w.Close())
}

func TestWatcherCloseWithoutEvents(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := filepath.Join(t.TempDir(), "manifest.json")
	w, err := NewWatcher(path, NewRandomizer())
	require.NoError(t, err)
	w.Start(context.Background())
	require.NoError(t, w.Close())
}
