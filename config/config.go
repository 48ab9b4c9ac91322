// Package config loads isolinuxfs settings from a TOML file.
package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"github.com/davidbalbert/isolinuxfs/cache"
	"github.com/davidbalbert/isolinuxfs/disk"
	"github.com/davidbalbert/isolinuxfs/fsutil"
)

type Boot struct {
	// Directories searched for the boot configuration, in order. Empty
	// means the driver's defaults.
	SearchPath []string `toml:"search_path"`
	ConfigName string   `toml:"config_name"`
}

type Config struct {
	CacheBlocks int    `toml:"cache_blocks"`
	ReadRetries int    `toml:"read_retries"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`

	Boot Boot `toml:"boot"`
}

func Default() *Config {
	return &Config{
		CacheBlocks: cache.DefaultCapacity,
		ReadRetries: 0,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// Load reads the config file at path on top of the defaults. Unknown keys are
// an error.
func Load(path string) (*Config, error) {
	c := Default()

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

func (c *Config) Validate() error {
	if c.CacheBlocks < 0 {
		return fmt.Errorf("cache_blocks must not be negative: %d", c.CacheBlocks)
	}
	if c.ReadRetries < 0 {
		return fmt.Errorf("read_retries must not be negative: %d", c.ReadRetries)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json: %q", c.LogFormat)
	}

	for _, dir := range c.Boot.SearchPath {
		if !path.IsAbs(dir) {
			return fmt.Errorf("boot.search_path entries must be absolute: %q", dir)
		}
	}
	if strings.Contains(c.Boot.ConfigName, "/") {
		return fmt.Errorf("boot.config_name must be a file name: %q", c.Boot.ConfigName)
	}

	return nil
}

// Logger returns a logger with the configured level and format.
func (c *Config) Logger() (*log.Logger, error) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	l := log.New()
	l.SetLevel(level)

	switch c.LogFormat {
	case "json":
		l.SetFormatter(&log.JSONFormatter{})
	case "text", "":
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format: %q", c.LogFormat)
	}

	return l, nil
}

func (c *Config) DiskOptions() []disk.Option {
	var options []disk.Option
	if c.ReadRetries > 0 {
		options = append(options, disk.WithRetries(c.ReadRetries))
	}
	return options
}

func (c *Config) MountOptions(l *log.Entry) []fsutil.MountOption {
	options := []fsutil.MountOption{
		fsutil.WithCacheBlocks(c.CacheBlocks),
	}
	if l != nil {
		options = append(options, fsutil.WithLogger(l))
	}
	if len(c.Boot.SearchPath) > 0 || c.Boot.ConfigName != "" {
		options = append(options, fsutil.WithConfigSearch(c.Boot.SearchPath, c.Boot.ConfigName))
	}
	return options
}
