// Package fsutil is the filesystem-independent layer that sits between block
// devices and filesystem drivers. Drivers implement Ops; FS owns the mount
// state and drives path lookup, file reads and directory listings through it.
package fsutil

import (
	"errors"
	"time"
)

var (
	ErrNotDir = errors.New("not a directory")
	ErrIsDir  = errors.New("is a directory")
)

type Mode uint8

const (
	ModeFile Mode = iota
	ModeDir
)

func (m Mode) String() string {
	switch m {
	case ModeFile:
		return "file"
	case ModeDir:
		return "dir"
	default:
		return "unknown"
	}
}

// Inode is a driver's view of a file or directory. Drivers return their own
// concrete type and type-assert it back when they are handed one.
type Inode interface {
	Mode() Mode
	Size() int64
	Blocks() uint32
	ModTime() time.Time
}

// Dirent is one record returned from a directory listing.
type Dirent struct {
	Ino    uint64
	Off    int64
	Reclen int
	Type   Mode
	Name   string
}

// File is an open file or directory. Offset is the position in the file's
// byte stream, and for directories doubles as the listing cursor.
type File struct {
	FS     *FS
	Inode  Inode
	Offset int64
}

// Ops is the set of operations a filesystem driver provides.
type Ops interface {
	Name() string

	// Init reads the superblock and sets up the block cache. It returns the
	// filesystem's block shift.
	Init(fsys *FS) (uint, error)

	IgetRoot(fsys *FS) (Inode, error)

	// Iget looks up name in parent. A missing name is fs.ErrNotExist.
	Iget(fsys *FS, name string, parent Inode) (Inode, error)

	// GetFSSec reads up to blocks blocks of f into buf starting at
	// f.Offset, advancing it. more reports whether data remains.
	GetFSSec(f *File, buf []byte, blocks int) (n int, more bool, err error)

	// Readdir returns the next entry of the directory f, or io.EOF.
	Readdir(f *File) (*Dirent, error)

	MangleName(name string) string

	// LoadConfig finds the boot configuration file, makes its directory the
	// working directory, and returns its path.
	LoadConfig(fsys *FS) (string, error)

	CloseFile(f *File)
}
