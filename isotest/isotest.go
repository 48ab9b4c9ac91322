// Package isotest builds small ISO 9660 images in memory for tests.
package isotest

import (
	"bytes"
	"encoding/binary"

	"github.com/davidbalbert/isolinuxfs/disk"
)

const BlockSize = 2048

// Record is a directory record. Name is the raw on-disk identifier, so
// "\x00" and "\x01" are the self and parent entries.
type Record struct {
	Name   string
	Extent uint32
	Size   uint32
	Dir    bool
}

func putBothEndian32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b[0:4], v)
	binary.BigEndian.PutUint32(b[4:8], v)
}

func putBothEndian16(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b[0:2], v)
	binary.BigEndian.PutUint16(b[2:4], v)
}

// Len returns the encoded length, including the pad byte that keeps records
// an even length.
func (r Record) Len() int {
	n := 33 + len(r.Name)
	if len(r.Name)%2 == 0 {
		n++
	}
	return n
}

func (r Record) Bytes() []byte {
	b := make([]byte, r.Len())

	b[0] = byte(len(b))
	putBothEndian32(b[2:10], r.Extent)
	putBothEndian32(b[10:18], r.Size)

	// 2021-07-08 12:34:56 UTC
	copy(b[18:25], []byte{121, 7, 8, 12, 34, 56, 0})

	if r.Dir {
		b[25] = 0x02
	}
	putBothEndian16(b[28:32], 1)
	b[32] = byte(len(r.Name))
	copy(b[33:], r.Name)

	return b
}

type Image struct {
	data []byte
}

// New returns a zeroed image of the given number of 2K blocks.
func New(blocks int) *Image {
	return &Image{data: make([]byte, blocks*BlockSize)}
}

// WriteAt copies b into the image at byte offset off, growing it to a whole
// number of blocks if needed.
func (img *Image) WriteAt(b []byte, off int64) {
	end := int(off) + len(b)
	if end > len(img.data) {
		blocks := (end + BlockSize - 1) / BlockSize
		img.data = append(img.data, make([]byte, blocks*BlockSize-len(img.data))...)
	}
	copy(img.data[off:], b)
}

// SetPrimary writes a primary volume descriptor with the given root
// directory record, followed by a set terminator.
func (img *Image) SetPrimary(volumeID string, root Record) {
	root.Name = "\x00"

	pvd := make([]byte, BlockSize)
	pvd[0] = 1
	copy(pvd[1:6], "CD001")
	pvd[6] = 1
	copy(pvd[8:40], bytes.Repeat([]byte(" "), 32))
	copy(pvd[40:72], bytes.Repeat([]byte(" "), 32))
	copy(pvd[40:72], volumeID)
	putBothEndian32(pvd[80:88], uint32(len(img.data)/BlockSize))
	putBothEndian16(pvd[120:124], 1)
	putBothEndian16(pvd[124:128], 1)
	putBothEndian16(pvd[128:132], BlockSize)
	copy(pvd[156:190], root.Bytes())
	pvd[881] = 1

	term := make([]byte, BlockSize)
	term[0] = 255
	copy(term[1:6], "CD001")
	term[6] = 1

	img.WriteAt(pvd, 16*BlockSize)
	img.WriteAt(term, 17*BlockSize)
}

// WriteRecords packs records into consecutive blocks starting at block. A
// record that doesn't fit in what is left of a block starts the next one.
// It returns the number of blocks used.
func (img *Image) WriteRecords(block uint32, records ...Record) int {
	off := 0
	blocks := 1

	for _, r := range records {
		b := r.Bytes()
		if off+len(b) > BlockSize {
			off = 0
			blocks++
		}
		img.WriteAt(b, int64(block)*BlockSize+int64((blocks-1)*BlockSize+off))
		off += len(b)
	}

	return blocks
}

func (img *Image) Bytes() []byte {
	return img.data
}

func (img *Image) Disk() *disk.Image {
	return disk.New(bytes.NewReader(img.data))
}
