package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadCommit(t *testing.T) {
	dir := t.TempDir()
	repo, err := ggit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.h"), []byte("class Widget {};\n"), 0o600))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("widget.h")
	require.NoError(t, err)
	hash, err := wt.Commit("add widget", &ggit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	sub := filepath.Join(dir, "source")
	require.NoError(t, os.Mkdir(sub, 0o750))

	got, err := HeadCommit(sub)
	require.NoError(t, err)
	assert.Equal(t, hash.String(), got)
}

func TestHeadCommitNotARepository(t *testing.T) {
	_, err := HeadCommit(t.TempDir())
	assert.Error(t, err)
}
