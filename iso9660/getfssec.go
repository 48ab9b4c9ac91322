package iso9660

import (
	"fmt"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

// getfssec reads up to blocks blocks of f, starting at the block holding
// f.Offset, straight from the disk. The count is clamped to what is left of
// the file and the returned length to the file's size.
func getfssec(f *fsutil.File, buf []byte, blocks int) (int, bool, error) {
	fsys := f.FS

	in, ok := f.Inode.(*inode)
	if !ok {
		return 0, false, fmt.Errorf("not an iso9660 inode: %T", f.Inode)
	}

	bytesLeft := in.size - f.Offset
	if bytesLeft <= 0 {
		return 0, false, nil
	}
	if blocks <= 0 {
		return 0, true, nil
	}

	blocksLeft := int((bytesLeft + int64(fsys.BlockSize()) - 1) >> fsys.BlockShift)
	if blocks > blocksLeft {
		blocks = blocksLeft
	}

	if len(buf) < blocks<<fsys.BlockShift {
		return 0, false, fmt.Errorf("buffer of %d bytes too small for %d blocks", len(buf), blocks)
	}

	block := uint64(in.extent) + uint64(f.Offset>>fsys.BlockShift)
	if _, err := fsys.ReadBlocks(buf, block, blocks); err != nil {
		return 0, false, err
	}

	n := int64(blocks) << fsys.BlockShift
	more := true
	if n >= bytesLeft {
		n = bytesLeft
		more = false
	}

	f.Offset += n

	return int(n), more, nil
}
