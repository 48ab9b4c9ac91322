package iso9660

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/davidbalbert/isolinuxfs/fsutil"
	"github.com/davidbalbert/isolinuxfs/isotest"
)

const dirExtent = 20

// filler returns records whose encoded lengths add up to total, which must be
// even and at least 40.
func filler(total int) []isotest.Record {
	var records []isotest.Record

	for i := 0; total > 0; i++ {
		l := total
		if l > 254 {
			l = 254
		}
		if rest := total - l; rest > 0 && rest < 40 {
			l -= 40
		}

		prefix := fmt.Sprintf("FILL%02d", i)
		records = append(records, isotest.Record{
			Name:   prefix + strings.Repeat("X", l-34-len(prefix)),
			Extent: 100 + uint32(i),
			Size:   uint32(i),
		})
		total -= l
	}

	return records
}

// rawDirImage writes records back to back from the start of the directory,
// letting them straddle block boundaries.
func rawDirImage(blocks int, records ...isotest.Record) *isotest.Image {
	img := isotest.New(dirExtent + blocks)
	size := uint32(blocks * isotest.BlockSize)

	all := append([]isotest.Record{
		{Name: "\x00", Extent: dirExtent, Size: size, Dir: true},
		{Name: "\x01", Extent: dirExtent, Size: size, Dir: true},
	}, records...)

	off := int64(dirExtent * isotest.BlockSize)
	for _, r := range all {
		img.WriteAt(r.Bytes(), off)
		off += int64(r.Len())
	}

	img.SetPrimary("RAW", isotest.Record{Extent: dirExtent, Size: size, Dir: true})

	return img
}

type walked struct {
	name  string
	start int64
}

func walkAll(w *walker) ([]walked, []*record, error) {
	var got []walked
	var recs []*record

	for {
		rec, start, err := w.next()
		if err != nil {
			return got, recs, err
		}
		got = append(got, walked{string(rec.name), start})
		recs = append(recs, rec)
	}
}

func TestWalkerStraddle(t *testing.T) {
	target := isotest.Record{Name: "TARGET.TXT;1", Extent: 1234, Size: 5678}
	after := isotest.Record{Name: "AFTER;1", Extent: 99, Size: 1}

	// ".", ".." and filler end 10 bytes before the first block boundary.
	fill := filler(isotest.BlockSize - 10 - 68)
	records := append(fill, target, after)

	fsys := mount(t, rawDirImage(2, records...).Disk())
	w := newWalker(fsys, rootOf(t, fsys), 0)

	got, recs, err := walkAll(w)
	if err != io.EOF {
		t.Fatalf("walk ended with %v, want io.EOF", err)
	}
	if len(got) != len(records)+2 {
		t.Fatalf("walked %d records, want %d", len(got), len(records)+2)
	}

	n := len(got)
	want := []walked{
		{"TARGET.TXT;1", isotest.BlockSize - 10},
		{"AFTER;1", isotest.BlockSize - 10 + int64(target.Len())},
	}
	if diff := cmp.Diff(want, got[n-2:], cmp.AllowUnexported(walked{})); diff != "" {
		t.Errorf("records after the boundary mismatch (-want +got):\n%s", diff)
	}

	unsplit, err := parseRecord(target.Bytes())
	if err != nil {
		t.Fatalf("parseRecord failed: %v", err)
	}
	if diff := cmp.Diff(unsplit, recs[n-2], cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("reassembled record mismatch (-unsplit +reassembled):\n%s", diff)
	}

	if pos := w.pos(); pos != 2*isotest.BlockSize {
		t.Errorf("pos at EOF = %d, want %d", pos, 2*isotest.BlockSize)
	}
}

func TestWalkerRecordEndsOnBoundary(t *testing.T) {
	next := isotest.Record{Name: "NEXT;1", Extent: 7, Size: 7}

	fill := filler(isotest.BlockSize - 68)
	records := append(fill, next)

	fsys := mount(t, rawDirImage(2, records...).Disk())
	w := newWalker(fsys, rootOf(t, fsys), 0)

	got, _, err := walkAll(w)
	if err != io.EOF {
		t.Fatalf("walk ended with %v, want io.EOF", err)
	}

	if diff := cmp.Diff(walked{"NEXT;1", isotest.BlockSize}, got[len(got)-1], cmp.AllowUnexported(walked{})); diff != "" {
		t.Errorf("last record mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, g := range got {
		names = append(names, g.name)
	}
	for i, name := range names {
		for _, other := range names[i+1:] {
			if name == other {
				t.Errorf("record %q visited twice", name)
			}
		}
	}
}

func TestWalkerStartOffset(t *testing.T) {
	fsys := mount(t, isotest.Build(sampleTree()).Disk())
	root := rootOf(t, fsys)

	// Skip "." and "..", 34 bytes each.
	w := newWalker(fsys, root, 68)

	rec, start, err := w.next()
	if err != nil {
		t.Fatalf("next failed: %v", err)
	}
	if string(rec.name) != "BOOT" || start != 68 {
		t.Errorf("next = %q at %d, want BOOT at 68", rec.name, start)
	}
}

func TestWalkerCorrupt(t *testing.T) {
	tests := []struct {
		name  string
		setup func() *isotest.Image
	}{
		{
			name: "short length",
			setup: func() *isotest.Image {
				img := rawDirImage(2)
				img.WriteAt([]byte{20}, dirExtent*isotest.BlockSize+68)
				img.WriteRecords(dirExtent+1, isotest.Record{Name: "LATER;1", Extent: 5, Size: 5})
				return img
			},
		},
		{
			name: "name overflows record",
			setup: func() *isotest.Image {
				img := rawDirImage(2)
				r := isotest.Record{Name: "BAD;1", Extent: 5, Size: 5}.Bytes()
				r[32] = 100
				img.WriteAt(r, dirExtent*isotest.BlockSize+68)
				img.WriteRecords(dirExtent+1, isotest.Record{Name: "LATER;1", Extent: 5, Size: 5})
				return img
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d := newCountingDisk(test.setup().Disk())
			fsys := mount(t, d)
			w := newWalker(fsys, rootOf(t, fsys), 0)

			got, _, err := walkAll(w)
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("walk ended with %v, want ErrCorrupt", err)
			}
			if len(got) != 2 {
				t.Errorf("walked %d records before the corrupt one, want 2", len(got))
			}
			if d.reads[dirExtent+1] != 0 {
				t.Errorf("read the block after the corrupt record")
			}
		})
	}
}

func TestWalkerStraddlePastEnd(t *testing.T) {
	last := isotest.Record{Name: "TARGET.TXT;1", Extent: 1, Size: 1}
	fill := filler(isotest.BlockSize - 10 - 68)

	img := rawDirImage(1, append(fill, last)...)
	fsys := mount(t, img.Disk())
	w := newWalker(fsys, rootOf(t, fsys), 0)

	if _, _, err := walkAll(w); !errors.Is(err, ErrCorrupt) {
		t.Errorf("walk ended with %v, want ErrCorrupt", err)
	}
}

func TestParseRecord(t *testing.T) {
	good := isotest.Record{Name: "FOO.TXT;1", Extent: 42, Size: 4097, Dir: true}.Bytes()

	rec, err := parseRecord(good)
	if err != nil {
		t.Fatalf("parseRecord failed: %v", err)
	}
	if rec.extent != 42 || rec.size != 4097 || rec.mode() != fsutil.ModeDir {
		t.Errorf("parseRecord = extent %d size %d mode %v, want 42 4097 dir", rec.extent, rec.size, rec.mode())
	}
	if string(rec.name) != "FOO.TXT;1" || int(rec.len) != len(good) {
		t.Errorf("parseRecord name %q len %d, want FOO.TXT;1 %d", rec.name, rec.len, len(good))
	}
	if y, m, d := rec.ctime.Date(); y != 2021 || m != 7 || d != 8 {
		t.Errorf("ctime = %v, want 2021-07-08", rec.ctime)
	}

	self, err := parseRecord(isotest.Record{Name: "\x00"}.Bytes())
	if err != nil || string(self.name) != "." {
		t.Errorf("parseRecord(self) = %v, %v; want name .", self, err)
	}
	parent, err := parseRecord(isotest.Record{Name: "\x01"}.Bytes())
	if err != nil || string(parent.name) != ".." {
		t.Errorf("parseRecord(parent) = %v, %v; want name ..", parent, err)
	}

	bad := [][]byte{
		nil,
		{20},
		good[:len(good)-1],
	}
	for _, b := range bad {
		if _, err := parseRecord(b); !errors.Is(err, ErrCorrupt) {
			t.Errorf("parseRecord(%d bytes) = %v, want ErrCorrupt", len(b), err)
		}
	}
}
