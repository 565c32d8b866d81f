package main

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/swap/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by all commands. It is read from
// swapd.yaml in the home directory; command line flags take precedence.
type Config struct {
	// Home is the directory holding the database and the key files.
	Home string `yaml:"home"`

	// LogLevel is one of debug, info, error or none.
	LogLevel string `yaml:"log_level"`

	// Genesis is the genesis file used by the init command.
	Genesis string `yaml:"genesis"`
}

const configFile = "swapd.yaml"

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig(home string) Config {
	return Config{
		Home:     home,
		LogLevel: "info",
		Genesis:  filepath.Join(home, "genesis.json"),
	}
}

// LoadConfig reads the configuration file of given home directory. A missing
// file yields the default configuration.
func LoadConfig(home string) (Config, error) {
	conf := DefaultConfig(home)
	raw, err := ioutil.ReadFile(filepath.Join(home, configFile))
	switch {
	case os.IsNotExist(err):
		return conf, nil
	case err != nil:
		return conf, errors.Wrapf(errors.ErrInvalidInput, "read config: %s", err)
	}
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return conf, errors.Wrapf(errors.ErrInvalidInput, "parse config: %s", err)
	}
	if conf.Home == "" {
		conf.Home = home
	}
	if err := conf.Validate(); err != nil {
		return conf, err
	}
	return conf, nil
}

// Validate checks the log level.
func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "error", "none":
		return nil
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "unknown log level %q", c.LogLevel)
	}
}

// Save writes the configuration into the home directory.
func (c Config) Save() error {
	raw, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if err := os.MkdirAll(c.Home, 0o700); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if err := ioutil.WriteFile(filepath.Join(c.Home, configFile), raw, 0o600); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func (c Config) dbPath() string {
	return filepath.Join(c.Home, "data", "swap.db")
}

func (c Config) keyPath(name string) string {
	return filepath.Join(c.Home, "keys", name+".key")
}
