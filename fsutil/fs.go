package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/davidbalbert/isolinuxfs/cache"
	"github.com/davidbalbert/isolinuxfs/disk"
)

// FS is a mounted filesystem.
type FS struct {
	Ops   Ops
	Disk  disk.Disk
	Cache *cache.Cache

	BlockShift  uint
	SectorShift uint

	// Info is the driver's per-mount state.
	Info any

	Log *log.Entry

	// Where LoadConfig looks. Empty means the driver's defaults.
	ConfigSearchPath []string
	ConfigName       string

	cacheBlocks int
	cwd         string
	cwdInode    Inode
}

type MountOption func(*FS)

func WithCacheBlocks(n int) MountOption {
	return func(fsys *FS) {
		fsys.cacheBlocks = n
	}
}

func WithLogger(l *log.Entry) MountOption {
	return func(fsys *FS) {
		fsys.Log = l
	}
}

func WithConfigSearch(dirs []string, name string) MountOption {
	return func(fsys *FS) {
		fsys.ConfigSearchPath = dirs
		fsys.ConfigName = name
	}
}

func Mount(d disk.Disk, ops Ops, options ...MountOption) (*FS, error) {
	fsys := &FS{
		Ops:         ops,
		Disk:        d,
		SectorShift: d.SectorShift(),
		cwd:         "/",
	}

	for _, o := range options {
		o(fsys)
	}

	if fsys.Log == nil {
		fsys.Log = log.WithField("fs", ops.Name())
	}

	shift, err := ops.Init(fsys)
	if err != nil {
		return nil, fmt.Errorf("error mounting %s filesystem: %w", ops.Name(), err)
	}
	fsys.BlockShift = shift

	if fsys.Cache == nil {
		return nil, fmt.Errorf("%s filesystem did not initialize the block cache", ops.Name())
	}

	fsys.Log.WithFields(log.Fields{
		"block_size":  fsys.BlockSize(),
		"sector_size": 1 << fsys.SectorShift,
	}).Debug("mounted filesystem")

	return fsys, nil
}

func (fsys *FS) BlockSize() int {
	return 1 << fsys.BlockShift
}

// InitCache sets up the block cache. Drivers call it from Init once the
// block size is known.
func (fsys *FS) InitCache(blockShift uint) error {
	c, err := cache.New(fsys.Disk, blockShift, fsys.cacheBlocks, fsys.Log)
	if err != nil {
		return err
	}
	fsys.Cache = c
	return nil
}

func (fsys *FS) GetBlock(block uint64) ([]byte, error) {
	return fsys.Cache.GetBlock(block)
}

// ReadBlocks reads straight from the disk, bypassing the cache.
func (fsys *FS) ReadBlocks(buf []byte, block uint64, count int) (int, error) {
	return disk.ReadBlocks(fsys.Disk, buf, block, count, fsys.BlockShift)
}

func (fsys *FS) Root() (Inode, error) {
	return fsys.Ops.IgetRoot(fsys)
}

func (fsys *FS) Cwd() string {
	return fsys.cwd
}

// Searchdir resolves name to an open file. Absolute names start at the root,
// anything else at the working directory. Each path segment is looked up with
// the driver's Iget.
func (fsys *FS) Searchdir(name string) (*File, error) {
	key := fsys.Ops.MangleName(name)

	var inode Inode
	var err error
	if strings.HasPrefix(strings.TrimLeft(name, " \t"), "/") || fsys.cwdInode == nil {
		inode, err = fsys.Root()
	} else {
		inode = fsys.cwdInode
	}
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	for _, segment := range strings.Split(key, "/") {
		if segment == "" {
			continue
		}

		if inode.Mode() != ModeDir {
			return nil, &fs.PathError{Op: "open", Path: name, Err: ErrNotDir}
		}

		inode, err = fsys.Ops.Iget(fsys, segment, inode)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
	}

	return &File{FS: fsys, Inode: inode}, nil
}

func (fsys *FS) Open(name string) (*File, error) {
	return fsys.Searchdir(name)
}

func (fsys *FS) Chdir(name string) error {
	f, err := fsys.Searchdir(name)
	if err != nil {
		return err
	}
	defer fsys.Close(f)

	if f.Inode.Mode() != ModeDir {
		return &fs.PathError{Op: "chdir", Path: name, Err: ErrNotDir}
	}

	key := fsys.Ops.MangleName(name)
	if strings.HasPrefix(strings.TrimLeft(name, " \t"), "/") {
		fsys.cwd = path.Clean("/" + key)
	} else {
		fsys.cwd = path.Join(fsys.cwd, key)
	}
	fsys.cwdInode = f.Inode

	return nil
}

// Read implements io.Reader semantics on top of the driver's block reads.
func (fsys *FS) Read(f *File, p []byte) (int, error) {
	if f.Inode.Mode() == ModeDir {
		return 0, ErrIsDir
	}

	if len(p) == 0 {
		return 0, nil
	} else if f.Offset >= f.Inode.Size() {
		return 0, io.EOF
	}

	mask := int64(fsys.BlockSize() - 1)
	skip := int(f.Offset & mask)
	blocks := (skip + len(p) + fsys.BlockSize() - 1) >> fsys.BlockShift

	buf := make([]byte, blocks<<fsys.BlockShift)
	start := f.Offset
	f.Offset -= int64(skip)

	n, _, err := fsys.Ops.GetFSSec(f, buf, blocks)
	if err != nil {
		f.Offset = start
		return 0, err
	}

	copied := 0
	if n > skip {
		copied = copy(p, buf[skip:n])
	}
	f.Offset = start + int64(copied)

	return copied, nil
}

// ReadFile returns the contents of the named file.
func (fsys *FS) ReadFile(name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer fsys.Close(f)

	if f.Inode.Mode() == ModeDir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: ErrIsDir}
	}

	var data []byte
	err = fsys.EachChunk(f, 16, func(chunk []byte) error {
		data = append(data, chunk...)
		return nil
	})
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}

	return data, nil
}

// EachChunk streams f from its current offset in chunks of up to blocks
// blocks, calling fn for each.
func (fsys *FS) EachChunk(f *File, blocks int, fn func([]byte) error) error {
	if blocks < 1 {
		return fmt.Errorf("chunk size must be at least one block: %d", blocks)
	}

	buf := make([]byte, blocks<<fsys.BlockShift)

	for more := true; more; {
		var n int
		var err error
		n, more, err = fsys.Ops.GetFSSec(f, buf, blocks)
		if err != nil {
			return err
		}

		if n > 0 {
			if err := fn(buf[:n]); err != nil {
				return err
			}
		}
	}

	return nil
}

// Readdir returns the next entry of the directory f, or io.EOF at the end.
func (fsys *FS) Readdir(f *File) (*Dirent, error) {
	if f.Inode.Mode() != ModeDir {
		return nil, ErrNotDir
	}

	return fsys.Ops.Readdir(f)
}

func (fsys *FS) Close(f *File) {
	fsys.Ops.CloseFile(f)
}

func (fsys *FS) LoadConfig() (string, error) {
	name, err := fsys.Ops.LoadConfig(fsys)
	if errors.Is(err, fs.ErrNotExist) {
		fsys.Log.Debug("no boot configuration found")
	}
	return name, err
}
