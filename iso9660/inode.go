package iso9660

import (
	"time"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

type inode struct {
	mode   fsutil.Mode
	size   int64
	blocks uint32
	extent uint32
	mtime  time.Time
}

func (i *inode) Mode() fsutil.Mode {
	return i.mode
}

func (i *inode) Size() int64 {
	return i.size
}

func (i *inode) Blocks() uint32 {
	return i.blocks
}

func (i *inode) ModTime() time.Time {
	return i.mtime
}

// Extent returns the first logical block of an inode's data.
func Extent(in fsutil.Inode) (uint32, bool) {
	i, ok := in.(*inode)
	if !ok {
		return 0, false
	}
	return i.extent, true
}

func blocksFor(fsys *fsutil.FS, size int64) uint32 {
	return uint32((size + int64(fsys.BlockSize()) - 1) >> fsys.BlockShift)
}

func newInode(fsys *fsutil.FS, rec *record) *inode {
	size := int64(rec.size)

	return &inode{
		mode:   rec.mode(),
		size:   size,
		blocks: blocksFor(fsys, size),
		extent: rec.extent,
		mtime:  rec.ctime,
	}
}

// rootInode builds the root directory from the record in the primary volume
// descriptor. The root is a directory regardless of its flags.
func rootInode(fsys *fsutil.FS, sb *sbInfo) *inode {
	in := newInode(fsys, sb.root)
	in.mode = fsutil.ModeDir
	return in
}
