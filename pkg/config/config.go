// Package config resolves the effective run configuration from flags,
// LOANPREP_* environment variables, an optional config file and defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "LOANPREP"

// Output formats.
const (
	FormatCSV     = "csv"
	FormatJSONL   = "jsonl"
	FormatParquet = "parquet"
)

type Input struct {
	Path      string `mapstructure:"path" yaml:"path" toml:"path" json:"path"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter" toml:"delimiter" json:"delimiter"`
}

type Output struct {
	Path   string `mapstructure:"path" yaml:"path" toml:"path" json:"path"`
	Folder string `mapstructure:"folder" yaml:"folder" toml:"folder" json:"folder"`
	Format string `mapstructure:"format" yaml:"format" toml:"format" json:"format"`
}

// Stages are the three pipeline switches.
type Stages struct {
	DropIdentifiers bool `mapstructure:"drop_identifiers" yaml:"drop_identifiers" toml:"drop_identifiers" json:"drop_identifiers"`
	Split           bool `mapstructure:"split" yaml:"split" toml:"split" json:"split"`
	Scale           bool `mapstructure:"scale" yaml:"scale" toml:"scale" json:"scale"`
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level" toml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" toml:"format" json:"format"`
}

type Config struct {
	Input  Input  `mapstructure:"input" yaml:"input" toml:"input" json:"input"`
	Output Output `mapstructure:"output" yaml:"output" toml:"output" json:"output"`
	Stages Stages `mapstructure:"stages" yaml:"stages" toml:"stages" json:"stages"`
	Log    Log    `mapstructure:"log" yaml:"log" toml:"log" json:"log"`
}

// Presets name the supported stage combinations.
var Presets = map[string]Stages{
	"split":  {DropIdentifiers: true, Split: true, Scale: true},
	"scale":  {Scale: true},
	"select": {},
}

// FlagKeys maps command line flag names to config keys.
var FlagKeys = map[string]string{
	"input":            "input.path",
	"delimiter":        "input.delimiter",
	"output":           "output.path",
	"output_folder":    "output.folder",
	"format":           "output.format",
	"drop-identifiers": "stages.drop_identifiers",
	"split":            "stages.split",
	"scale":            "stages.scale",
	"log-level":        "log.level",
	"log-format":       "log.format",
}

var defaults = []struct {
	key   string
	value any
}{
	{"input.path", ""},
	{"input.delimiter", ","},
	{"output.path", ""},
	{"output.folder", ""},
	{"output.format", FormatCSV},
	{"stages.drop_identifiers", false},
	{"stages.split", false},
	{"stages.scale", false},
	{"log.level", "info"},
	{"log.format", "console"},
}

// envAliases are read after the full LOANPREP_<SECTION>_<KEY> name.
var envAliases = map[string]string{
	"input.path":  EnvPrefix + "_INPUT",
	"output.path": EnvPrefix + "_OUTPUT",
}

// EnvName returns the environment variable bound to a config key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Every key is bound by name. AutomaticEnv would treat LOANPREP_INPUT as
// the whole input section and hide input.* from the file and defaults.
func bindEnv(v *viper.Viper) error {
	for _, d := range defaults {
		names := []string{d.key, EnvName(d.key)}
		if alias, ok := envAliases[d.key]; ok {
			names = append(names, alias)
		}
		if err := v.BindEnv(names...); err != nil {
			return fmt.Errorf("bind env %s: %w", d.key, err)
		}
		v.SetDefault(d.key, d.value)
	}
	return nil
}

// Load resolves the configuration.
// Precedence: flags > env > config file > defaults. A .env file in the
// working directory is loaded first and never overrides the real environment.
// Only flags present in FlagKeys are bound; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if fl := flags.Lookup(name); fl != nil {
				if err := v.BindPFlag(key, fl); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Output.Format = strings.ToLower(c.Output.Format)
	return &c, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyPreset overwrites the stage switches with a named preset.
func (c *Config) ApplyPreset(name string) error {
	st, ok := Presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	c.Stages = st
	return nil
}

// Validate checks that the configuration describes a runnable pipeline.
func (c *Config) Validate() error {
	var err error
	if c.Input.Path == "" {
		err = multierr.Append(err, errors.New("input path is required (--input or LOANPREP_INPUT)"))
	}
	if c.Stages.Split && c.Output.Folder == "" {
		err = multierr.Append(err, errors.New("split requires an output folder (--output_folder)"))
	}
	if !c.Stages.Split && c.Output.Path == "" {
		err = multierr.Append(err, errors.New("an output path is required (--output)"))
	}
	switch c.Output.Format {
	case FormatCSV, FormatJSONL, FormatParquet:
	default:
		err = multierr.Append(err, fmt.Errorf("unsupported output format %q", c.Output.Format))
	}
	if _, derr := c.DelimiterRune(); derr != nil {
		err = multierr.Append(err, derr)
	}
	return err
}

// DelimiterRune returns the single input delimiter character.
func (c *Config) DelimiterRune() (rune, error) {
	d := c.Input.Delimiter
	if d == "" {
		return ',', nil
	}
	if d == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character", d)
	}
	r, _ := utf8.DecodeRuneInString(d)
	return r, nil
}

// Marshal renders the configuration as yaml, toml or json.
func (c *Config) Marshal(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		return yaml.Marshal(c)
	case "toml":
		return toml.Marshal(c)
	case "json":
		return json.MarshalIndent(c, "", "  ")
	}
	return nil, fmt.Errorf("unsupported config format %q", format)
}
