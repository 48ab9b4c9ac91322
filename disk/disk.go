package disk

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
)

// CD-ROM sector size. Used for plain image files, which carry no geometry
// of their own.
const defaultSectorShift = 11

// Disk is the raw device underneath a filesystem. Sectors are the device's
// addressing unit, which may be smaller than a filesystem's logical block.
type Disk interface {
	ReadSectors(buf []byte, sector uint64, count int) (int, error)
	SectorShift() uint
}

type Option func(*Image)

// WithSectorShift overrides the detected sector size.
func WithSectorShift(shift uint) Option {
	return func(d *Image) {
		d.sectorShift = shift
	}
}

// WithRetries retries failed reads up to n times with exponential backoff.
// Reads past the end of the image are never retried.
func WithRetries(n int) Option {
	return func(d *Image) {
		d.retries = n
	}
}

// Image is a Disk backed by an io.ReaderAt, usually an ISO image file or a
// block device.
type Image struct {
	r           io.ReaderAt
	sectorShift uint
	retries     int

	f    *os.File
	lock *flock.Flock
}

func New(r io.ReaderAt, options ...Option) *Image {
	d := &Image{
		r:           r,
		sectorShift: defaultSectorShift,
	}

	for _, o := range options {
		o(d)
	}

	return d
}

// Open opens the image or device at path for reading. It holds a shared lock
// on the file until Close, so tools that rewrite images in place can detect
// that it is in use.
func Open(path string, options ...Option) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening disk: %w", err)
	}

	lock := flock.New(path)
	ok, err := lock.TryRLock()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error locking %s: %w", path, err)
	}
	if !ok {
		f.Close()
		return nil, fmt.Errorf("%s is locked for writing", path)
	}

	shift, err := sectorShift(f)
	if err != nil {
		lock.Unlock()
		f.Close()
		return nil, err
	}

	d := New(f, append([]Option{WithSectorShift(shift)}, options...)...)
	d.f = f
	d.lock = lock

	log.WithFields(log.Fields{"path": path, "sector_size": 1 << d.sectorShift}).Debug("opened disk")

	return d, nil
}

func (d *Image) SectorShift() uint {
	return d.sectorShift
}

func (d *Image) ReadSectors(buf []byte, sector uint64, count int) (int, error) {
	n := count << d.sectorShift
	if n > len(buf) {
		return 0, fmt.Errorf("buffer too small for %d sectors: %d bytes", count, len(buf))
	}

	off := int64(sector << d.sectorShift)
	p := buf[:n]

	var read int
	op := func() error {
		var err error
		read, err = d.r.ReadAt(p, off)
		// ReaderAt may report io.EOF alongside a full read of the last bytes.
		if read == len(p) && err == io.EOF {
			return nil
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return backoff.Permanent(err)
		}
		return err
	}

	var err error
	if d.retries > 0 {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 10 * time.Millisecond
		b.MaxInterval = time.Second
		err = backoff.RetryNotify(op, backoff.WithMaxRetries(b, uint64(d.retries)), func(err error, wait time.Duration) {
			log.WithError(err).WithField("sector", sector).Warnf("read failed, retrying in %v", wait)
		})
	} else {
		err = op()
	}

	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		return read, fmt.Errorf("error reading %d sectors at %d: %w", count, sector, err)
	}

	return read, nil
}

func (d *Image) Close() error {
	if d.lock != nil {
		if err := d.lock.Unlock(); err != nil {
			return err
		}
	}

	if d.f != nil {
		return d.f.Close()
	}

	return nil
}

// ReadBlocks reads count logical blocks of size 1<<blockShift starting at
// block. The block size must be a multiple of the device's sector size.
func ReadBlocks(d Disk, buf []byte, block uint64, count int, blockShift uint) (int, error) {
	sectorShift := d.SectorShift()
	if sectorShift > blockShift {
		return 0, fmt.Errorf("sector size %d larger than block size %d", 1<<sectorShift, 1<<blockShift)
	}

	shift := blockShift - sectorShift
	return d.ReadSectors(buf, block<<shift, count<<shift)
}
