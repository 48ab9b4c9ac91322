package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

// Cat implements subcommands.Command for the "cat" command.
type Cat struct {
	blocks int
}

func (*Cat) Name() string {
	return "cat"
}

func (*Cat) Synopsis() string {
	return "write a file in an image to stdout"
}

func (*Cat) Usage() string {
	return `cat [flags] <image> <path>
`
}

func (c *Cat) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.blocks, "blocks", 16, "blocks to read at a time")
}

func (c *Cat) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 || c.blocks < 1 {
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

	if file.Inode.Mode() == fsutil.ModeDir {
		return failure(env, fmt.Errorf("%s: %w", p, fsutil.ErrIsDir))
	}

	err = v.EachChunk(file, c.blocks, func(chunk []byte) error {
		_, err := env.Stdout.Write(chunk)
		return err
	})
	if err != nil {
		return failure(env, fmt.Errorf("%s: %w", p, err))
	}

	return subcommands.ExitSuccess
}
