//go:build linux

package disk

import (
	"fmt"
	"math/bits"
	"os"

	"golang.org/x/sys/unix"
)

// sectorShift returns the logical sector size of a block device, or the
// CD-ROM default for regular files.
func sectorShift(f *os.File) (uint, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("error reading disk info: %w", err)
	}

	if fi.Mode()&os.ModeDevice == 0 || fi.Mode()&os.ModeCharDevice != 0 {
		return defaultSectorShift, nil
	}

	size, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
	if err != nil {
		return 0, fmt.Errorf("error reading sector size of %s: %w", f.Name(), err)
	}

	if size <= 0 || size&(size-1) != 0 {
		return 0, fmt.Errorf("invalid sector size for %s: %d", f.Name(), size)
	}

	return uint(bits.TrailingZeros(uint(size))), nil
}
