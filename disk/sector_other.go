//go:build !linux

package disk

import "os"

func sectorShift(f *os.File) (uint, error) {
	return defaultSectorShift, nil
}
