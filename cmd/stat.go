package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/davidbalbert/isolinuxfs/iso9660"
)

// Stat implements subcommands.Command for the "stat" command.
type Stat struct{}

func (*Stat) Name() string {
	return "stat"
}

func (*Stat) Synopsis() string {
	return "show where a file lives in an image"
}

func (*Stat) Usage() string {
	return `stat <image> <path>
`
}

func (*Stat) SetFlags(*flag.FlagSet) {}

func (*Stat) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	env := envFrom(args)
	p := f.Arg(1)

	v, err := mount(env, f.Arg(0))
	if err != nil {
		return failure(env, err)
	}
	defer v.Unmount()

	file, err := v.Open(p)
	if err != nil {
		return failure(env, err)
	}
	defer v.Close(file)

	in := file.Inode
	extent, _ := iso9660.Extent(in)

	w := env.Stdout
	fmt.Fprintf(w, "path: %s\n", p)
	fmt.Fprintf(w, "type: %s\n", in.Mode())
	fmt.Fprintf(w, "size: %d\n", in.Size())
	fmt.Fprintf(w, "blocks: %d\n", in.Blocks())
	fmt.Fprintf(w, "extent: %d\n", extent)
	if mtime := in.ModTime(); !mtime.IsZero() {
		fmt.Fprintf(w, "modified: %s\n", mtime.Format(time.RFC3339))
	}

	return subcommands.ExitSuccess
}
