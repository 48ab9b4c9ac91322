package isotest

// Node is a file or directory in an image built by Build. Names are on-disk
// identifiers, e.g. "FOO.TXT;1" for files and "BOOT" for directories.
type Node struct {
	Name     string
	Dir      bool
	Data     []byte
	Children []*Node

	extent uint32
	blocks int
}

func File(name string, data string) *Node {
	return &Node{Name: name, Data: []byte(data)}
}

func Dir(name string, children ...*Node) *Node {
	return &Node{Name: name, Dir: true, Children: children}
}

func (n *Node) size() uint32 {
	if n.Dir {
		return uint32(n.blocks * BlockSize)
	}
	return uint32(len(n.Data))
}

func (n *Node) record(name string) Record {
	return Record{Name: name, Extent: n.extent, Size: n.size(), Dir: n.Dir}
}

func (n *Node) records(parent *Node) []Record {
	records := []Record{n.record("\x00"), parent.record("\x01")}
	for _, c := range n.Children {
		records = append(records, c.record(c.Name))
	}
	return records
}

// dirBlocks counts the blocks WriteRecords will use for n's records.
func (n *Node) dirBlocks() int {
	lens := []int{34, 34}
	for _, c := range n.Children {
		lens = append(lens, Record{Name: c.Name}.Len())
	}

	off := 0
	blocks := 1
	for _, l := range lens {
		if off+l > BlockSize {
			off = 0
			blocks++
		}
		off += l
	}
	return blocks
}

// Build lays out root and its descendants after the volume descriptors:
// directories first, depth first, then file data.
func Build(root *Node) *Image {
	root.Dir = true
	next := uint32(18)

	var files []*Node
	var layout func(n *Node)
	layout = func(n *Node) {
		n.blocks = n.dirBlocks()
		n.extent = next
		next += uint32(n.blocks)

		for _, c := range n.Children {
			if c.Dir {
				layout(c)
			} else {
				files = append(files, c)
			}
		}
	}
	layout(root)

	for _, f := range files {
		f.extent = next
		f.blocks = (len(f.Data) + BlockSize - 1) / BlockSize
		if f.blocks == 0 {
			f.blocks = 1
		}
		next += uint32(f.blocks)
	}

	img := New(int(next))

	var write func(n, parent *Node)
	write = func(n, parent *Node) {
		img.WriteRecords(n.extent, n.records(parent)...)
		for _, c := range n.Children {
			if c.Dir {
				write(c, n)
			}
		}
	}
	write(root, root)

	for _, f := range files {
		img.WriteAt(f.Data, int64(f.extent)*BlockSize)
	}

	img.SetPrimary("TESTVOL", root.record("\x00"))

	return img
}
