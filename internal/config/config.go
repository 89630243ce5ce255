package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/jward/lineage"
)

// Config is the lineage CLI configuration. Values come from, in increasing
// precedence: defaults, the config file, LINEAGE_* environment variables and
// flags bound by the caller.
type Config struct {
	Format    string          `mapstructure:"format"`
	DB        string          `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	TypeGraph TypeGraphConfig `mapstructure:"typegraph"`
	Scripts   ScriptsConfig   `mapstructure:"scripts"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TypeGraphConfig holds the multiple-inheritance ordering used by the java
// commands.
type TypeGraphConfig struct {
	Priority    string `mapstructure:"priority"`
	Interfaces  string `mapstructure:"interfaces"`
	Concurrency int    `mapstructure:"concurrency"`
}

type ScriptsConfig struct {
	Dir string `mapstructure:"dir"`
}

// ConfigFileName is looked up in the working directory and its parents when
// no explicit file is given.
const ConfigFileName = "lineage.yaml"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("format", "json")
	v.SetDefault("db", filepath.Join(".lineage", "lineage.db"))

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.json", false)

	v.SetDefault("typegraph.priority", "classes-first")
	v.SetDefault("typegraph.interfaces", "declaration")
	v.SetDefault("typegraph.concurrency", 0) // 0 means one worker per CPU

	v.SetDefault("scripts.dir", "")
}

// New returns a Viper instance with defaults and LINEAGE_ environment
// binding. configFile may be empty, in which case lineage.yaml is searched
// for upwards from the working directory; a missing file is not an error.
func New(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("LINEAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if configFile == "" {
		configFile = findProjectConfig()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", configFile)
		}
	}
	return v, nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if cfg.Format != "json" && cfg.Format != "text" {
		return nil, errors.Newf("invalid format %q: must be json or text", cfg.Format)
	}
	if _, err := cfg.TypeOrder(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TypeOrder parses the typegraph settings.
func (c *Config) TypeOrder() (lineage.TypeOrder, error) {
	priority, err := lineage.ParsePriority(c.TypeGraph.Priority)
	if err != nil {
		return lineage.TypeOrder{}, errors.Wrap(err, "typegraph.priority")
	}
	interfaces, err := lineage.ParseInterfaceOrder(c.TypeGraph.Interfaces)
	if err != nil {
		return lineage.TypeOrder{}, errors.Wrap(err, "typegraph.interfaces")
	}
	return lineage.TypeOrder{Priority: priority, Interfaces: interfaces}, nil
}

// findProjectConfig walks up from the working directory looking for
// lineage.yaml. Returns "" when none is found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
