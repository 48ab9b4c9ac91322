package iso9660

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

type vType uint8

const (
	vtBoot vType = iota
	vtPrimary
	vtSupplementary
	vtPartition
	vtTerminator = 255
)

func (t vType) String() string {
	switch t {
	case vtBoot:
		return "boot"
	case vtPrimary:
		return "primary"
	case vtSupplementary:
		return "supplementary"
	case vtPartition:
		return "partition"
	case vtTerminator:
		return "terminator"
	default:
		return "unknown"
	}
}

const (
	// The primary volume descriptor lives in the first sector after the
	// 32K system area.
	primarySector = 16

	rootRecordOffset = 156
	rootRecordLen    = 34
)

func parseString(b []byte) string {
	return string(bytes.TrimRight(b, " "))
}

// sbInfo is the per-mount state kept in fsutil.FS.Info.
type sbInfo struct {
	volumeID         string
	logicalBlockSize uint16
	root             *record
}

func readPrimary(fsys *fsutil.FS) (*sbInfo, error) {
	buf := make([]byte, fsys.BlockSize())

	vtype, err := readDescriptor(fsys, buf, primarySector)
	if err != nil {
		return nil, err
	}

	if vtype != vtPrimary {
		return nil, fmt.Errorf("sector %d is not a primary volume descriptor: type %d", primarySector, vtype)
	}

	root, err := parseRecord(buf[rootRecordOffset : rootRecordOffset+rootRecordLen])
	if err != nil {
		return nil, fmt.Errorf("error reading root directory entry: %w", err)
	}

	sb := &sbInfo{
		volumeID:         parseString(buf[40:72]),
		logicalBlockSize: binary.LittleEndian.Uint16(buf[128:130]),
		root:             root,
	}

	if int(sb.logicalBlockSize) != fsys.BlockSize() {
		fsys.Log.WithField("logical_block_size", sb.logicalBlockSize).Warnf("ignoring logical block size, using %d", fsys.BlockSize())
	}

	return sb, nil
}

// VolumeInfo describes a mounted volume.
type VolumeInfo struct {
	ID         string
	RootExtent uint32
	RootSize   uint32
}

// Volume returns information about the volume mounted at fsys.
func Volume(fsys *fsutil.FS) (VolumeInfo, bool) {
	sb, ok := fsys.Info.(*sbInfo)
	if !ok {
		return VolumeInfo{}, false
	}

	return VolumeInfo{
		ID:         sb.volumeID,
		RootExtent: sb.root.extent,
		RootSize:   sb.root.size,
	}, true
}
