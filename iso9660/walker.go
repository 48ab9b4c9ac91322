package iso9660

import (
	"fmt"
	"io"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

// walker steps through the records of a directory occupying the blocks
// [first, end). Blocks come from the block cache.
//
// A record may straddle a block boundary, in which case it is reassembled
// from the tail of one block and the head of the next. Records never span
// more than two blocks.
type walker struct {
	fsys  *fsutil.FS
	first uint64
	end   uint64

	cur  uint64
	off  int
	data []byte
}

// newWalker returns a walker positioned at byte offset pos of the directory.
func newWalker(fsys *fsutil.FS, dir *inode, pos int64) *walker {
	first := uint64(dir.extent)
	mask := int64(fsys.BlockSize() - 1)

	return &walker{
		fsys:  fsys,
		first: first,
		end:   first + uint64(dir.blocks),
		cur:   first + uint64(pos>>fsys.BlockShift),
		off:   int(pos & mask),
	}
}

// pos returns the walker's byte offset in the directory.
func (w *walker) pos() int64 {
	return int64(w.cur-w.first)<<w.fsys.BlockShift + int64(w.off)
}

func (w *walker) nextBlock() {
	w.cur++
	w.off = 0
	w.data = nil
}

// next returns the next record and the offset it starts at. Zero length
// bytes pad out the rest of a block and are skipped. At the end of the
// directory it returns io.EOF.
func (w *walker) next() (*record, int64, error) {
	blockSize := w.fsys.BlockSize()

	for {
		if w.off >= blockSize {
			w.nextBlock()
		}

		if w.data == nil {
			if w.cur >= w.end {
				return nil, 0, io.EOF
			}

			data, err := w.fsys.GetBlock(w.cur)
			if err != nil {
				return nil, 0, err
			}
			w.data = data
		}

		length := int(w.data[w.off])
		if length == 0 {
			w.nextBlock()
			continue
		}

		start := w.pos()

		if length < minRecordLen {
			return nil, start, fmt.Errorf("%w in sector %d: length %d", ErrCorrupt, w.cur, length)
		}

		var buf []byte
		if w.off+length > blockSize {
			var tmp [maxRecordLen]byte
			n := copy(tmp[:], w.data[w.off:])

			if w.cur+1 >= w.end {
				return nil, start, fmt.Errorf("%w in sector %d: record runs past end of directory", ErrCorrupt, w.cur)
			}

			w.nextBlock()
			data, err := w.fsys.GetBlock(w.cur)
			if err != nil {
				return nil, start, err
			}
			w.data = data

			copy(tmp[n:length], w.data[:length-n])
			w.off = length - n
			buf = tmp[:length]
		} else {
			buf = w.data[w.off : w.off+length]
			w.off += length
		}

		rec, err := parseRecord(buf)
		if err != nil {
			return nil, start, fmt.Errorf("sector %d: %w", w.cur, err)
		}

		return rec, start, nil
	}
}
