package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/text/cases"
)

var (
	osReadDir   = os.ReadDir
	osStat      = os.Stat
	filepathAbs = filepath.Abs
)

// ReadDir lists dir for display: the parent entry first, then directories,
// then files, each group ordered by case-folded name. Symlinks are resolved so
// a link to a directory sorts with directories.
func ReadDir(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepathAbs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	dirEntries, err := osReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", abs, err)
	}

	parentPath := filepath.Join(abs, "..")
	parent := Entry{Path: parentPath, Name: ParentName, IsDir: true}
	if info, err := osStat(parentPath); err == nil {
		parent.Created = info.ModTime()
	}

	dirs := make([]Entry, 0, len(dirEntries))
	regular := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		path := filepath.Join(abs, de.Name())
		info, err := de.Info()
		if err != nil {
			// vanished between ReadDir and Info
			continue
		}
		if de.Type()&os.ModeSymlink != 0 {
			if target, err := osStat(path); err == nil {
				info = target
			}
		}
		e := NewEntry(path, info)
		if e.IsDir {
			dirs = append(dirs, e)
		} else {
			regular = append(regular, e)
		}
	}
	sortByFoldedName(dirs)
	sortByFoldedName(regular)

	entries := make([]Entry, 0, len(dirs)+len(regular)+1)
	entries = append(entries, parent)
	entries = append(entries, dirs...)
	entries = append(entries, regular...)
	return entries, nil
}

func sortByFoldedName(entries []Entry) {
	fold := cases.Fold()
	keys := make(map[string]string, len(entries))
	for _, e := range entries {
		keys[e.Path] = fold.String(e.Name)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return keys[entries[i].Path] < keys[entries[j].Path]
	})
}
