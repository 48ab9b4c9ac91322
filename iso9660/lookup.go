package iso9660

import (
	"io"
	"io/fs"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

// findEntry returns the first record in dir, in on-disk order, whose name
// matches name.
func findEntry(fsys *fsutil.FS, name string, dir *inode) (*record, error) {
	w := newWalker(fsys, dir, 0)

	for {
		rec, _, err := w.next()
		if err == io.EOF {
			return nil, fs.ErrNotExist
		} else if err != nil {
			return nil, err
		}

		if CompareName(rec.name, name) {
			return rec, nil
		}
	}
}
