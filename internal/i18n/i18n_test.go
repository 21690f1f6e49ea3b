package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveHonorsQValues(t *testing.T) {
	b, err := Load("../../locales", "en", []string{"en", "de"})
	require.NoError(t, err)

	require.Equal(t, "de", b.Resolve("en;q=0.8, de;q=0.9"))
	require.Equal(t, "de", b.Resolve("de-AT"))
	require.Equal(t, "en", b.Resolve("fr-FR"))
	require.Equal(t, "en", b.Resolve(""))
	require.Equal(t, "en", b.Resolve(";;garbage"))
}

func TestTranslateFallsBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"nav.home":"Home","nav.gallery":"Gallery"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.json"), []byte(`{"nav.home":"Start"}`), 0o644))

	b, err := Load(dir, "en", []string{"en", "de"})
	require.NoError(t, err)
	require.Equal(t, "Start", b.T("de", "nav.home"))
	require.Equal(t, "Gallery", b.T("de", "nav.gallery"))
	require.Equal(t, "missing.key", b.T("de", "missing.key"))
	require.Equal(t, []string{"en", "de"}, b.Supported())
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{}`), 0o644))
	b, err := Load(dir, "en", []string{"de", "en"})
	require.NoError(t, err)

	require.Equal(t, "de", b.Normalize(" DE "))
	require.Equal(t, "de", b.Normalize("de-CH"))
	require.Empty(t, b.Normalize("fr"))
	require.Empty(t, b.Normalize(""))
}

func TestLoadRequiresFallbackFile(t *testing.T) {
	t.Parallel()

	_, err := Load(t.TempDir(), "en", []string{"en"})
	require.Error(t, err)
}
