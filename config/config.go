// Configuration file, environment overrides and hot reload.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jmigpin/virtkey"
	"github.com/jmigpin/virtkey/keysym"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const maxRemapSlots = 64

type Config struct {
	Display    string            `toml:"display"`
	RemapSlots int               `toml:"remap_slots"`
	LogLevel   string            `toml:"log_level"`
	Labels     map[string]string `toml:"labels"` // keysym name -> key cap label
}

func Default() *Config {
	return &Config{
		RemapSlots: virtkey.DefaultRemapSlots,
		LogLevel:   "info",
		Labels:     map[string]string{},
	}
}

// $XDG_CONFIG_HOME/virtkey/config.toml
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "virtkey", "config.toml")
}

//----------

// Reads the file over the defaults. A missing file is not an error.
func ReadFile(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := Decode(string(b), cfg); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

func Decode(s string, cfg *Config) error {
	md, err := toml.Decode(s, cfg)
	if err != nil {
		return err
	}
	if u := md.Undecoded(); len(u) > 0 {
		keys := []string{}
		for _, k := range u {
			keys = append(keys, k.String())
		}
		return errors.Errorf("unknown keys: %v", strings.Join(keys, ", "))
	}
	if cfg.Labels == nil {
		cfg.Labels = map[string]string{}
	}
	return nil
}

//----------

func (cfg *Config) ApplyEnvOverrides() error {
	if v, ok := os.LookupEnv("VIRTKEY_DISPLAY"); ok {
		cfg.Display = v
	}
	if v := os.Getenv("VIRTKEY_REMAP_SLOTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "VIRTKEY_REMAP_SLOTS")
		}
		cfg.RemapSlots = n
	}
	if v := os.Getenv("VIRTKEY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func (cfg *Config) Validate() error {
	u := []string{}
	if cfg.RemapSlots < 1 || cfg.RemapSlots > maxRemapSlots {
		u = append(u, "remap_slots: must be in [1,"+strconv.Itoa(maxRemapSlots)+"]")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		u = append(u, "log_level: "+err.Error())
	}
	for _, name := range sortedKeys(cfg.Labels) {
		if _, err := keysym.Parse(name); err != nil {
			u = append(u, "labels: "+err.Error())
		}
	}
	if len(u) > 0 {
		return errors.New("config: " + strings.Join(u, "; "))
	}
	return nil
}

//----------

func (cfg *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func (cfg *Config) LabelOverrides() map[keysym.Keysym]string {
	m := map[keysym.Keysym]string{}
	for name, label := range cfg.Labels {
		if ks, err := keysym.Parse(name); err == nil {
			m[ks] = label
		}
	}
	return m
}

func (cfg *Config) Options(logger *logrus.Logger) *virtkey.Options {
	return &virtkey.Options{
		Display:    cfg.Display,
		RemapSlots: cfg.RemapSlots,
		Labels:     cfg.LabelOverrides(),
		Logger:     logger,
	}
}

func sortedKeys(m map[string]string) []string {
	u := []string{}
	for k := range m {
		u = append(u, k)
	}
	sort.Strings(u)
	return u
}
