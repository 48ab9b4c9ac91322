package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/davidbalbert/isolinuxfs/iso9660"
)

// Info implements subcommands.Command for the "info" command.
type Info struct{}

func (*Info) Name() string {
	return "info"
}

func (*Info) Synopsis() string {
	return "describe the volume in an image"
}

func (*Info) Usage() string {
	return `info <image>
`
}

func (*Info) SetFlags(*flag.FlagSet) {}

func (*Info) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	env := envFrom(args)

	v, err := mount(env, f.Arg(0))
	if err != nil {
		return failure(env, err)
	}
	defer v.Unmount()

	vol, ok := iso9660.Volume(v.FS)
	if !ok {
		return failure(env, fmt.Errorf("%s: not an iso9660 volume", f.Arg(0)))
	}

	w := env.Stdout
	fmt.Fprintf(w, "volume: %s\n", vol.ID)
	fmt.Fprintf(w, "block size: %d\n", v.BlockSize())
	fmt.Fprintf(w, "sector size: %d\n", 1<<v.SectorShift)
	fmt.Fprintf(w, "root: extent %d, %d bytes\n", vol.RootExtent, vol.RootSize)

	err = iso9660.EachDescriptor(v.FS, func(d iso9660.Descriptor) bool {
		if d.ID != "" {
			fmt.Fprintf(w, "descriptor %d: %s %q\n", d.Sector, d.Type, d.ID)
		} else {
			fmt.Fprintf(w, "descriptor %d: %s\n", d.Sector, d.Type)
		}
		return true
	})
	if err != nil {
		return failure(env, err)
	}

	if p, err := v.LoadConfig(); err == nil {
		fmt.Fprintf(w, "boot config: %s\n", p)
	}

	stats := v.Cache.Stats()
	fmt.Fprintf(w, "cache: %d blocks, %d hits, %d misses\n", v.Cache.Len(), stats.Hits, stats.Misses)

	return subcommands.ExitSuccess
}
