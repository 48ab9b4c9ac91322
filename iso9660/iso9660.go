// Package iso9660 is a read-only ISO 9660 driver for fsutil.
//
// Only the primary volume descriptor is used: no Joliet, Rock Ridge,
// multi-session or multi-extent files. Directory records are read through
// the block cache; file data is read straight from the disk.
package iso9660

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/davidbalbert/isolinuxfs/disk"
	"github.com/davidbalbert/isolinuxfs/fsutil"
)

// ISO 9660 logical blocks are always 2K here, whatever the device's sector
// size or the volume descriptor's logical block size.
const blockShift = 11

type isoOps struct{}

// Ops is the ISO 9660 driver.
var Ops fsutil.Ops = isoOps{}

// Mount mounts the ISO 9660 volume on d.
func Mount(d disk.Disk, options ...fsutil.MountOption) (*fsutil.FS, error) {
	return fsutil.Mount(d, Ops, options...)
}

func (isoOps) Name() string {
	return "iso"
}

// Init reads the primary volume descriptor with a raw read, as the cache
// doesn't exist yet, then initializes the cache.
func (isoOps) Init(fsys *fsutil.FS) (uint, error) {
	fsys.BlockShift = blockShift

	sb, err := readPrimary(fsys)
	if err != nil {
		return 0, err
	}
	fsys.Info = sb

	if err := fsys.InitCache(blockShift); err != nil {
		return 0, err
	}

	return blockShift, nil
}

func (isoOps) IgetRoot(fsys *fsutil.FS) (fsutil.Inode, error) {
	sb, ok := fsys.Info.(*sbInfo)
	if !ok {
		return nil, fmt.Errorf("filesystem not mounted as iso9660")
	}

	return rootInode(fsys, sb), nil
}

// Iget looks up name in parent. Corrupt directories and read errors are
// logged and reported as fs.ErrNotExist.
func (isoOps) Iget(fsys *fsutil.FS, name string, parent fsutil.Inode) (fsutil.Inode, error) {
	dir, ok := parent.(*inode)
	if !ok {
		return nil, fmt.Errorf("not an iso9660 inode: %T", parent)
	}

	rec, err := findEntry(fsys, name, dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			fsys.Log.WithError(err).WithField("name", name).Error("lookup failed")
		}
		return nil, fs.ErrNotExist
	}

	return newInode(fsys, rec), nil
}

func (isoOps) GetFSSec(f *fsutil.File, buf []byte, blocks int) (int, bool, error) {
	return getfssec(f, buf, blocks)
}

func (isoOps) Readdir(f *fsutil.File) (*fsutil.Dirent, error) {
	return readdir(f)
}

func (isoOps) MangleName(name string) string {
	return MangleName(name)
}

func (isoOps) LoadConfig(fsys *fsutil.FS) (string, error) {
	return loadConfig(fsys)
}

// CloseFile drops the file's reference to its inode. Inodes aren't shared,
// so there is nothing else to release.
func (isoOps) CloseFile(f *fsutil.File) {
	f.Inode = nil
	f.Offset = 0
}
