package iso9660

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/davidbalbert/isolinuxfs/fsutil"
	"github.com/davidbalbert/isolinuxfs/isotest"
)

func TestRootInode(t *testing.T) {
	img := isotest.New(22)
	img.WriteRecords(20,
		isotest.Record{Name: "\x00", Extent: 20, Size: 4096, Dir: true},
		isotest.Record{Name: "\x01", Extent: 20, Size: 4096, Dir: true},
	)
	img.SetPrimary("ROOT", isotest.Record{Extent: 20, Size: 4096, Dir: true})

	fsys := mount(t, img.Disk())
	root := rootOf(t, fsys)

	want := &inode{
		mode:   fsutil.ModeDir,
		size:   4096,
		blocks: 2,
		extent: 20,
		mtime:  time.Date(2021, 7, 8, 12, 34, 56, 0, time.UTC),
	}
	if diff := cmp.Diff(want, root, cmp.AllowUnexported(inode{})); diff != "" {
		t.Errorf("root inode mismatch (-want +got):\n%s", diff)
	}
}

// The root is a directory even if its record doesn't say so.
func TestRootInodeForcesDir(t *testing.T) {
	img := isotest.New(21)
	img.WriteRecords(20,
		isotest.Record{Name: "\x00", Extent: 20, Size: 2048, Dir: true},
		isotest.Record{Name: "\x01", Extent: 20, Size: 2048, Dir: true},
	)
	img.SetPrimary("ROOT", isotest.Record{Extent: 20, Size: 2048})

	fsys := mount(t, img.Disk())

	if mode := rootOf(t, fsys).Mode(); mode != fsutil.ModeDir {
		t.Errorf("root mode = %v, want dir", mode)
	}
}

func TestNewInodeBlocks(t *testing.T) {
	fsys := mount(t, isotest.Build(sampleTree()).Disk())

	tests := []struct {
		size uint32
		want uint32
	}{
		{0, 0},
		{1, 1},
		{2047, 1},
		{2048, 1},
		{2049, 2},
		{4096, 2},
		{1 << 20, 512},
	}

	for _, test := range tests {
		in := newInode(fsys, &record{extent: 50, size: test.size})
		if in.Blocks() != test.want {
			t.Errorf("blocks for size %d = %d, want %d", test.size, in.Blocks(), test.want)
		}
		if in.Mode() != fsutil.ModeFile {
			t.Errorf("mode for a plain record = %v, want file", in.Mode())
		}
	}
}

func TestExtent(t *testing.T) {
	fsys := mount(t, isotest.Build(sampleTree()).Disk())

	ext, ok := Extent(rootOf(t, fsys))
	if !ok || ext != 18 {
		t.Errorf("Extent(root) = %d, %t; want 18, true", ext, ok)
	}

	if _, ok := Extent(nil); ok {
		t.Errorf("Extent(nil) reported an iso9660 inode")
	}
}
