package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// Bootcfg implements subcommands.Command for the "bootcfg" command.
type Bootcfg struct {
	pathOnly bool
}

func (*Bootcfg) Name() string {
	return "bootcfg"
}

func (*Bootcfg) Synopsis() string {
	return "find and print an image's boot configuration"
}

func (*Bootcfg) Usage() string {
	return `bootcfg [flags] <image>
`
}

func (b *Bootcfg) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&b.pathOnly, "path", false, "print only where the configuration was found")
}

func (b *Bootcfg) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
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

	p, err := v.LoadConfig()
	if err != nil {
		return failure(env, fmt.Errorf("no boot configuration: %w", err))
	}

	if b.pathOnly {
		fmt.Fprintln(env.Stdout, p)
		return subcommands.ExitSuccess
	}

	data, err := v.ReadFile(p)
	if err != nil {
		return failure(env, err)
	}

	env.Log.WithField("path", p).WithField("cwd", v.Cwd()).Info("boot configuration")

	if _, err := env.Stdout.Write(data); err != nil {
		return failure(env, err)
	}

	return subcommands.ExitSuccess
}
