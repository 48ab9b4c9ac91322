package iso9660

import (
	"errors"
	"fmt"
	"io"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

// readdir returns the record at the directory cursor f.Offset and moves the
// cursor past it.
func readdir(f *fsutil.File) (*fsutil.Dirent, error) {
	fsys := f.FS

	dir, ok := f.Inode.(*inode)
	if !ok {
		return nil, fmt.Errorf("not an iso9660 inode: %T", f.Inode)
	}

	if f.Offset < 0 {
		return nil, fmt.Errorf("negative directory offset: %d", f.Offset)
	}

	w := newWalker(fsys, dir, f.Offset)

	rec, start, err := w.next()
	if err == io.EOF {
		f.Offset = w.pos()
		return nil, io.EOF
	} else if errors.Is(err, ErrCorrupt) {
		fsys.Log.WithError(err).WithField("offset", start).Error("can't read directory")
		return nil, io.EOF
	} else if err != nil {
		return nil, err
	}

	dirent := &fsutil.Dirent{
		Off:    start,
		Reclen: int(rec.len),
		Type:   rec.mode(),
		Name:   toLower(ConvertName(rec.name)),
	}

	f.Offset = start + int64(rec.len)

	return dirent, nil
}
