package iso9660

import (
	"io/fs"
	"path"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

var defaultSearchPath = []string{
	"/boot/isolinux",
	"/isolinux",
	"/",
}

const defaultConfigName = "isolinux.cfg"

// loadConfig looks for the boot configuration in each search directory in
// turn. The directory it is found in becomes the working directory.
func loadConfig(fsys *fsutil.FS) (string, error) {
	dirs := fsys.ConfigSearchPath
	if len(dirs) == 0 {
		dirs = defaultSearchPath
	}

	name := fsys.ConfigName
	if name == "" {
		name = defaultConfigName
	}

	for _, dir := range dirs {
		p := path.Join(dir, name)

		f, err := fsys.Open(p)
		if err != nil {
			fsys.Log.WithError(err).Trace("config not found")
			continue
		}
		isDir := f.Inode.Mode() == fsutil.ModeDir
		fsys.Close(f)

		if isDir {
			continue
		}

		if err := fsys.Chdir(dir); err != nil {
			return "", err
		}

		fsys.Log.WithField("path", p).Debug("found boot configuration")

		return p, nil
	}

	return "", fs.ErrNotExist
}
