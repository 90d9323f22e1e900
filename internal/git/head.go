// Package git reads repository metadata used to tag documentation builds.
package git

import (
	"fmt"

	ggit "github.com/go-git/go-git/v5"
)

// HeadCommit returns the HEAD commit hash of the repository containing repoPath.
// Parent directories are searched for the .git directory.
func HeadCommit(repoPath string) (string, error) {
	repo, err := ggit.PlainOpenWithOptions(repoPath, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repository %s: %w", repoPath, err)
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}
