package iso9660

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

// ErrCorrupt is returned when a directory record can't be valid.
var ErrCorrupt = errors.New("corrupted directory entry")

const (
	minRecordLen = 33
	maxRecordLen = 255

	flagDir uint8 = (1 << 1)
)

// record is a directory record. Records are variable length: a 33 byte
// header followed by the file identifier and padding.
type record struct {
	len    uint8
	extent uint32
	size   uint32
	ctime  time.Time
	flags  uint8
	name   []byte
}

func (r *record) mode() fsutil.Mode {
	if r.flags&flagDir != 0 {
		return fsutil.ModeDir
	}
	return fsutil.ModeFile
}

// parseRecord decodes the record at the start of buf. Only the bytes covered
// by the record's length field are read.
func parseRecord(buf []byte) (*record, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty record", ErrCorrupt)
	}

	length := int(buf[0])
	if length < minRecordLen {
		return nil, fmt.Errorf("%w: length %d", ErrCorrupt, length)
	}
	if length > len(buf) {
		return nil, fmt.Errorf("%w: length %d exceeds %d available bytes", ErrCorrupt, length, len(buf))
	}
	buf = buf[:length]

	nameLen := int(buf[32])
	if minRecordLen+nameLen > length {
		return nil, fmt.Errorf("%w: name length %d doesn't fit in record of length %d", ErrCorrupt, nameLen, length)
	}

	var name []byte
	raw := buf[minRecordLen : minRecordLen+nameLen]
	if nameLen == 1 && raw[0] == 0 {
		name = []byte(".")
	} else if nameLen == 1 && raw[0] == 1 {
		name = []byte("..")
	} else {
		name = append([]byte(nil), raw...)
	}

	return &record{
		len:    uint8(length),
		extent: binary.LittleEndian.Uint32(buf[2:6]),
		size:   binary.LittleEndian.Uint32(buf[10:14]),
		ctime:  parseShortFormTime(buf[18:25]),
		flags:  buf[25],
		name:   name,
	}, nil
}
