package iso9660

import (
	"fmt"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

// Bounds the walk over a volume descriptor set with a missing terminator.
const maxDescriptors = 64

// Descriptor is an entry in the volume descriptor set.
type Descriptor struct {
	Sector uint64
	Type   string
	ID     string
}

func readDescriptor(fsys *fsutil.FS, buf []byte, sector uint64) (vType, error) {
	if _, err := fsys.ReadBlocks(buf, sector, 1); err != nil {
		return 0, fmt.Errorf("error reading volume descriptor: %w", err)
	}

	if id := parseString(buf[1:6]); id != "CD001" {
		return 0, fmt.Errorf("invalid volume identifier in sector %d: %q", sector, id)
	}

	vtype := vType(buf[0])
	if vtype > vtPartition && vtype < vtTerminator {
		return 0, fmt.Errorf("invalid volume type in sector %d: %d", sector, vtype)
	}

	return vtype, nil
}

// EachDescriptor calls fn for each volume descriptor up to the set
// terminator, stopping early if fn returns false.
func EachDescriptor(fsys *fsutil.FS, fn func(Descriptor) bool) error {
	buf := make([]byte, fsys.BlockSize())

	for i := uint64(0); i < maxDescriptors; i++ {
		sector := primarySector + i

		vtype, err := readDescriptor(fsys, buf, sector)
		if err != nil {
			return err
		}

		if vtype == vtTerminator {
			return nil
		}

		d := Descriptor{Sector: sector, Type: vtype.String()}
		if vtype == vtPrimary || vtype == vtSupplementary {
			d.ID = parseString(buf[40:72])
		}

		if !fn(d) {
			return nil
		}
	}

	return fmt.Errorf("no volume descriptor set terminator in %d sectors", maxDescriptors)
}
