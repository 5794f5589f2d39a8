package gitlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/adp-project/adp/internal/pipeline"
)

// initRepo creates a repository with commits "first", "second", "third" and
// returns its path.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(msg), 0o644))
		_, err = wt.Add("notes.txt")
		require.NoError(t, err)

		_, err = wt.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{
				Name:  "Test Author",
				Email: "author@example.com",
				When:  when.Add(time.Duration(i) * time.Hour),
			},
		})
		require.NoError(t, err)
	}
	return dir
}

func TestSourceEmitsCommitsNewestFirst(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)

	v, err := newSource(map[string]any{"path": dir})
	require.NoError(t, err)

	batch, err := v.(*GitLogSource).Run(context.Background(), &pipeline.Context{})
	require.NoError(t, err)

	got, err := pipeline.Collect(batch)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "third", got[0]["message"])
	require.Equal(t, "second", got[1]["message"])
	require.Equal(t, "first", got[2]["message"])

	require.Equal(t, "Test Author", got[0]["author"])
	require.Equal(t, "author@example.com", got[0]["email"])
	require.Equal(t, "2025-06-01T14:00:00Z", got[0]["when"])
	require.NotEmpty(t, got[0]["hash"])
}

func TestSourceMaxCount(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)

	v, err := newSource(map[string]any{"path": dir, "max_count": 2})
	require.NoError(t, err)

	batch, err := v.(*GitLogSource).Run(context.Background(), &pipeline.Context{})
	require.NoError(t, err)

	got, err := pipeline.Collect(batch)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "third", got[0]["message"])
}

func TestSourceDefaultsToWorkDir(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)

	v, err := newSource(nil)
	require.NoError(t, err)

	batch, err := v.(*GitLogSource).Run(context.Background(), &pipeline.Context{WorkDir: dir})
	require.NoError(t, err)

	got, err := pipeline.Collect(batch)
	require.NoError(t, err)
	require.Len(t, got, 3)
}

func TestSourceNotARepository(t *testing.T) {
	t.Parallel()

	v, err := newSource(map[string]any{"path": t.TempDir()})
	require.NoError(t, err)

	_, err = v.(*GitLogSource).Run(context.Background(), &pipeline.Context{})
	require.Error(t, err)
}
