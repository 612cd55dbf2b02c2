// Package config defines the data structures related to configuration and
// includes functions for loading and validating a valuation file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/iwvelando/dcf-valuation/pkg/datetime"
	"github.com/iwvelando/dcf-valuation/pkg/dcf"
	"github.com/iwvelando/dcf-valuation/pkg/validation"
)

// EnvPrefix namespaces environment overrides, e.g. DCF_INPUTS_RISK_FREE_RATE.
const EnvPrefix = "DCF"

// Configuration holds a single company valuation.
type Configuration struct {
	Ticker  string        `mapstructure:"ticker"`
	Name    string        `mapstructure:"name"`
	AsOf    string        `mapstructure:"as_of"`
	Inputs  dcf.Input     `mapstructure:"inputs"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv, json
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Every required input must be present.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	for _, field := range dcf.RequiredFields() {
		if !v.IsSet("inputs." + field) {
			return nil, fmt.Errorf("%w: missing required field inputs.%s", dcf.ErrMalformedInput, field)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("%w: unable to decode into struct, %v", dcf.ErrMalformedInput, err)
	}

	if _, err := datetime.ParseAsOf(configuration.AsOf); err != nil {
		return nil, err
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if c.Ticker == "" && c.Name == "" {
		warnings = append(warnings, "neither ticker nor name is set; output will be unlabeled")
	}
	if c.Ticker != "" {
		if _, err := validation.NormalizeTicker(c.Ticker); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return append(warnings, validation.ValidateAssumptions(c.Inputs)...)
}

// Label names the valuation for display, preferring the company name.
func (c *Configuration) Label() string {
	switch {
	case c.Name != "" && c.Ticker != "":
		return fmt.Sprintf("%s (%s)", c.Name, strings.ToUpper(c.Ticker))
	case c.Name != "":
		return c.Name
	default:
		return strings.ToUpper(c.Ticker)
	}
}
