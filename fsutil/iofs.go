package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"time"
)

type iofs struct {
	fsys *FS
}

// IOFS exposes a mounted filesystem as an io/fs.FS.
func IOFS(fsys *FS) fs.FS {
	return &iofs{fsys}
}

func (i *iofs) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	f, err := i.fsys.Searchdir("/" + name)
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	return &file{f: f, name: path.Base(name)}, nil
}

type fileInfo struct {
	name  string
	inode Inode
}

func (fi *fileInfo) Name() string {
	return fi.name
}

func (fi *fileInfo) Size() int64 {
	return fi.inode.Size()
}

func (fi *fileInfo) Mode() fs.FileMode {
	if fi.inode.Mode() == ModeDir {
		return fs.ModeDir | 0555
	}
	return 0444
}

func (fi *fileInfo) ModTime() time.Time {
	return fi.inode.ModTime()
}

func (fi *fileInfo) IsDir() bool {
	return fi.inode.Mode() == ModeDir
}

func (fi *fileInfo) Sys() interface{} {
	return fi.inode
}

// dirEntry outlives the directory handle that listed it, so it holds the
// parent inode rather than the handle.
type dirEntry struct {
	fsys   *FS
	parent Inode
	dirent *Dirent
}

func (d *dirEntry) Name() string {
	return d.dirent.Name
}

func (d *dirEntry) IsDir() bool {
	return d.dirent.Type == ModeDir
}

func (d *dirEntry) Type() fs.FileMode {
	if d.IsDir() {
		return fs.ModeDir
	}
	return 0
}

func (d *dirEntry) Info() (fs.FileInfo, error) {
	inode, err := d.fsys.Ops.Iget(d.fsys, d.dirent.Name, d.parent)
	if err != nil {
		return nil, err
	}

	return &fileInfo{d.dirent.Name, inode}, nil
}

type file struct {
	f    *File
	name string
}

func (f *file) Stat() (fs.FileInfo, error) {
	return &fileInfo{f.name, f.f.Inode}, nil
}

func (f *file) Read(p []byte) (int, error) {
	if f.f.Inode.Mode() == ModeDir {
		return 0, fmt.Errorf("can't call Read on a directory")
	}

	return f.f.FS.Read(f.f, p)
}

func (f *file) Close() error {
	f.f.FS.Close(f.f)
	return nil
}

func (f *file) ReadDir(n int) ([]fs.DirEntry, error) {
	if f.f.Inode.Mode() != ModeDir {
		return nil, fmt.Errorf("can't call ReadDir on a file")
	}

	var entries []fs.DirEntry
	if n > 0 {
		entries = make([]fs.DirEntry, 0, n)
	} else {
		entries = make([]fs.DirEntry, 0, 100)
	}

	for len(entries) < n || n <= 0 {
		dirent, err := f.f.FS.Readdir(f.f)
		if err == io.EOF {
			break
		} else if err != nil {
			return entries, err
		}

		if dirent.Name == "." || dirent.Name == ".." {
			continue
		}

		entries = append(entries, &dirEntry{f.f.FS, f.f.Inode, dirent})
	}

	if n > 0 && len(entries) == 0 {
		return nil, io.EOF
	}

	return entries, nil
}
