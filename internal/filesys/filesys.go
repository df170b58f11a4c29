// Package filesys provides the filesystem abstractions the configuration
// loaders operate on, so tests can swap the real disk for an in-memory
// implementation.
package filesys

import (
	"io"
	"io/fs"
	"os"
)

// ReadFS is the surface the gamemode.ini reload path needs: it only ever
// opens candidate config files for reading.
type ReadFS interface {
	Open(string) (io.ReadCloser, error)
}

// ReadWriteFS is the slightly larger surface the daemon settings loader
// needs. It is intentionally smaller than os.File because callers never
// need random-access writes or directory iteration.
type ReadWriteFS interface {
	ReadFS
	Stat(string) (fs.FileInfo, error)
	MkdirAll(string, os.FileMode) error
	WriteFile(string, []byte, os.FileMode) error
}

// OS returns a filesystem implementation backed by the standard library.
func OS() OsFS {
	return OsFS{}
}

// OsFS implements ReadFS and ReadWriteFS against the local disk.
type OsFS struct{}

func (OsFS) Open(p string) (io.ReadCloser, error)              { return os.Open(p) }
func (OsFS) Stat(p string) (fs.FileInfo, error)                { return os.Stat(p) }
func (OsFS) MkdirAll(p string, m os.FileMode) error            { return os.MkdirAll(p, m) }
func (OsFS) WriteFile(p string, b []byte, m os.FileMode) error { return os.WriteFile(p, b, m) }

var (
	_ ReadFS      = OsFS{}
	_ ReadWriteFS = OsFS{}
)
