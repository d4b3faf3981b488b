package provider

import (
	"path/filepath"
	"sync"

	"github.com/go-git/go-git/v5"
	"golang.org/x/sync/singleflight"
)

var (
	filepathAbs = filepath.Abs

	gitPlainOpen = func(path string) (*git.Repository, error) {
		return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	}
	repoWorktree = func(repo *git.Repository) (*git.Worktree, error) {
		return repo.Worktree()
	}
)

// repoLocator remembers, per directory, the root of the enclosing git work
// tree so that a listing of N entries opens the repository once. Lookups for
// different directories run concurrently.
type repoLocator struct {
	mu    sync.RWMutex
	roots map[string]string
	group singleflight.Group
}

func newRepoLocator() *repoLocator {
	return &repoLocator{roots: make(map[string]string)}
}

// root returns the work tree root containing dir, or "" when dir is not
// inside a work tree (bare repositories included).
func (l *repoLocator) root(dir string) string {
	l.mu.RLock()
	root, ok := l.roots[dir]
	l.mu.RUnlock()
	if ok {
		return root
	}
	v, _, _ := l.group.Do(dir, func() (interface{}, error) {
		root := findWorktreeRoot(dir)
		l.mu.Lock()
		l.roots[dir] = root
		l.mu.Unlock()
		return root, nil
	})
	return v.(string)
}

func findWorktreeRoot(dir string) string {
	repo, err := gitPlainOpen(dir)
	if err != nil {
		return ""
	}
	wt, err := repoWorktree(repo)
	if err != nil {
		// bare repository
		return ""
	}
	return wt.Filesystem.Root()
}

// queryTarget returns the directory git runs in and the pathspec to ask
// about. Directories are queried from inside so that a directory which is
// itself a repository root still reports its history.
func queryTarget(path string, isDir bool) (dir, pathspec string, err error) {
	abs, err := filepathAbs(path)
	if err != nil {
		return "", "", err
	}
	if isDir {
		return abs, ".", nil
	}
	return filepath.Dir(abs), filepath.Base(abs), nil
}
