// Package cmd holds the isolinuxfs subcommands.
package cmd

import (
	"fmt"
	"io"

	"github.com/google/subcommands"
	log "github.com/sirupsen/logrus"

	"github.com/davidbalbert/isolinuxfs/config"
	"github.com/davidbalbert/isolinuxfs/disk"
	"github.com/davidbalbert/isolinuxfs/fsutil"
	"github.com/davidbalbert/isolinuxfs/iso9660"
)

// Env is passed to every command's Execute as its first argument.
type Env struct {
	Config *config.Config
	Log    *log.Logger
	Stdout io.Writer
}

// Commands returns every subcommand, for registration with subcommands.
func Commands() []subcommands.Command {
	return []subcommands.Command{
		&Ls{},
		&Cat{},
		&Stat{},
		&Bootcfg{},
		&Info{},
	}
}

func envFrom(args []interface{}) *Env {
	return args[0].(*Env)
}

// volume is a mounted image and the disk underneath it.
type volume struct {
	*fsutil.FS
	disk *disk.Image
}

func (v *volume) Unmount() error {
	return v.disk.Close()
}

func mount(env *Env, image string) (*volume, error) {
	d, err := disk.Open(image, env.Config.DiskOptions()...)
	if err != nil {
		return nil, err
	}

	l := env.Log.WithField("image", image)

	fsys, err := iso9660.Mount(d, env.Config.MountOptions(l)...)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("%s: %w", image, err)
	}

	return &volume{FS: fsys, disk: d}, nil
}

// failure logs err and returns the exit status for a failed command.
func failure(env *Env, err error) subcommands.ExitStatus {
	env.Log.Error(err)
	return subcommands.ExitFailure
}
