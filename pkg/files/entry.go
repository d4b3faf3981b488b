package files

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ParentName is the display name of the synthetic entry leading to the parent directory.
const ParentName = "../"

// Entry is a filesystem item as handed to display modules and providers.
// Modules only read it.
type Entry struct {
	Path  string
	Name  string
	IsDir bool
	// Created is the modification time: os.FileInfo carries no birth time on
	// every platform, and listings must not depend on syscall specifics.
	Created time.Time
	Size    int64
}

// NewEntry builds an entry from path and its stat info. Directory names get a
// trailing slash, the way listings display them.
func NewEntry(path string, info os.FileInfo) Entry {
	name := filepath.Base(path)
	e := Entry{Path: path, Name: name}
	if info == nil {
		return e
	}
	e.IsDir = info.IsDir()
	e.Created = info.ModTime()
	if e.IsDir {
		e.Name = name + "/"
	} else {
		e.Size = info.Size()
	}
	return e
}

func (e Entry) IsParent() bool {
	return e.Name == ParentName
}

// Ext returns the lower-cased extension without the dot, or the lower-cased
// name for dotfiles and extension-less names such as "Makefile".
func (e Entry) Ext() string {
	name := strings.TrimSuffix(e.Name, "/")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return strings.ToLower(name[i+1:])
	}
	return strings.ToLower(name)
}
