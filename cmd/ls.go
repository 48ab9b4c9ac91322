package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"
	"golang.org/x/exp/slices"

	"github.com/davidbalbert/isolinuxfs/fsutil"
)

// Ls implements subcommands.Command for the "ls" command.
type Ls struct {
	all    bool
	long   bool
	sorted bool
}

func (*Ls) Name() string {
	return "ls"
}

func (*Ls) Synopsis() string {
	return "list a directory in an image"
}

func (*Ls) Usage() string {
	return `ls [flags] <image> [path] - list the entries of path, / by default.
`
}

func (l *Ls) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&l.all, "a", false, "include . and ..")
	f.BoolVar(&l.long, "l", false, "show type and size")
	f.BoolVar(&l.sorted, "sort", false, "sort by name instead of on-disk order")
}

func (l *Ls) Execute(_ context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 || f.NArg() > 2 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	env := envFrom(args)

	p := "/"
	if f.NArg() == 2 {
		p = f.Arg(1)
	}

	v, err := mount(env, f.Arg(0))
	if err != nil {
		return failure(env, err)
	}
	defer v.Unmount()

	dir, err := v.Open(p)
	if err != nil {
		return failure(env, err)
	}
	defer v.Close(dir)

	dirents, err := l.list(v.FS, dir)
	if err != nil {
		return failure(env, fmt.Errorf("%s: %w", p, err))
	}

	if l.sorted {
		slices.SortFunc(dirents, func(a, b *fsutil.Dirent) int {
			return strings.Compare(a.Name, b.Name)
		})
	}

	if err := l.print(env.Stdout, v.FS, dir, dirents); err != nil {
		return failure(env, err)
	}

	return subcommands.ExitSuccess
}

func (l *Ls) list(fsys *fsutil.FS, dir *fsutil.File) ([]*fsutil.Dirent, error) {
	var dirents []*fsutil.Dirent

	for {
		de, err := fsys.Readdir(dir)
		if err == io.EOF {
			return dirents, nil
		} else if err != nil {
			return nil, err
		}

		if !l.all && (de.Name == "." || de.Name == "..") {
			continue
		}

		dirents = append(dirents, de)
	}
}

func (l *Ls) print(w io.Writer, fsys *fsutil.FS, dir *fsutil.File, dirents []*fsutil.Dirent) error {
	if !l.long {
		for _, de := range dirents {
			fmt.Fprintln(w, de.Name)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 8, 1, ' ', 0)
	for _, de := range dirents {
		in, err := fsys.Ops.Iget(fsys, de.Name, dir.Inode)
		if err != nil {
			return fmt.Errorf("%s: %w", de.Name, err)
		}

		t := "-"
		if de.Type == fsutil.ModeDir {
			t = "d"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", t, in.Size(), de.Name)
	}
	return tw.Flush()
}
