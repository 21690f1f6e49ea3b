package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/northgate-sc/clubweb/internal/manifestdoc"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestAddListRemove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.json")

	out, _, err := run(t, "add", "match", "final.jpg", "-m", path)
	require.NoError(t, err)
	require.Equal(t, "Added final.jpg to Match\n", out)

	out, _, err = run(t, "add", "Match", "final.jpg", "-m", path)
	require.NoError(t, err)
	require.Equal(t, "final.jpg already exists in Match\n", out)

	_, _, err = run(t, "add", "TEAM", "squad.jpg", "--manifest", path)
	require.NoError(t, err)

	out, _, err = run(t, "list", "-m", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	require.Equal(t, []string{"Match", "1"}, strings.Fields(lines[1]))
	require.Equal(t, []string{"Team", "1"}, strings.Fields(lines[3]))
	require.Equal(t, []string{"Total", "2"}, strings.Fields(lines[5]))

	out, _, err = run(t, "remove", "match", "final.jpg", "-m", path)
	require.NoError(t, err)
	require.Equal(t, "Removed final.jpg from Match\n", out)

	m, err := manifestdoc.Open(path).Load()
	require.NoError(t, err)
	require.Equal(t, []string{"Match", "Team"}, m.Keys())
	require.Empty(t, m.Files("Match"))
}

func TestInvalidCategoryFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.json")
	body := "{\n  \"Match\": [\n    \"a.jpg\"\n  ]\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	_, stderr, err := run(t, "add", "Mascots", "x.jpg", "-m", path)
	require.ErrorIs(t, err, manifestdoc.ErrInvalidCategory)
	require.Contains(t, stderr, "invalid category")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, body, string(got))
}

func TestRemoveMissingIsNoop(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.json")
	body := `{"Match":["a.jpg"]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, _, err := run(t, "remove", "Match", "b.jpg", "-m", path)
	require.NoError(t, err)
	require.Equal(t, "b.jpg not found in Match\n", out)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, body, string(got), "the document keeps its original formatting")
}

func TestListMissingDocumentPrintsZeroCounts(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.json")
	out, _, err := run(t, "list", "-m", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	require.Equal(t, []string{"Community", "0"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"Total", "0"}, strings.Fields(lines[5]))

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist, "list must not create the document")
}

func TestListUnreadableDocumentFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Match": [`), 0o644))
	_, _, err := run(t, "list", "-m", path)
	require.ErrorIs(t, err, manifestdoc.ErrDocumentRead)
}

func TestMessagesUseTrimmedFilename(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.json")

	out, _, err := run(t, "add", "players", "  p.jpg ", "-m", path)
	require.NoError(t, err)
	require.Equal(t, "Added p.jpg to Players\n", out)

	out, _, err = run(t, "add", "Players", "p.jpg\t", "-m", path)
	require.NoError(t, err)
	require.Equal(t, "p.jpg already exists in Players\n", out)

	out, _, err = run(t, "remove", "Players", " q.jpg", "-m", path)
	require.NoError(t, err)
	require.Equal(t, "q.jpg not found in Players\n", out)

	out, _, err = run(t, "rm", "Players", " p.jpg ", "-m", path)
	require.NoError(t, err)
	require.Equal(t, "Removed p.jpg from Players\n", out)
}

func TestHelpSucceeds(t *testing.T) {
	t.Parallel()

	out, _, err := run(t, "help")
	require.NoError(t, err)
	require.Contains(t, out, "Categories: Community, Match, Players, Team, Training")
	require.Contains(t, out, "add")
	require.Contains(t, out, "remove")
	require.Contains(t, out, "list")
}

func TestWrongArgCount(t *testing.T) {
	t.Parallel()

	_, _, err := run(t, "add", "Match")
	require.Error(t, err)
}
