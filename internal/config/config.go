// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/iwvelando/rentcheck/internal/ledger"
	"github.com/iwvelando/rentcheck/pkg/constants"
	"github.com/iwvelando/rentcheck/pkg/datetime"
	"github.com/iwvelando/rentcheck/pkg/validation"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. RENTCHECK_OUTPUT_FORMAT.
const EnvPrefix = "RENTCHECK"

// Configuration holds all configuration for rentcheck.
type Configuration struct {
	Ledger  LedgerConfig  `yaml:"ledger,omitempty"`
	Policy  PolicyConfig  `yaml:"policy,omitempty"`
	Today   string        `yaml:"today,omitempty"` // YYYY-MM-DD, pins the reference date
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`

	// dir is the directory of the loaded file; relative ledger paths resolve against it.
	dir string
}

// LedgerConfig locates the portfolio ledger.
type LedgerConfig struct {
	Path string `yaml:"path,omitempty"` // empty selects the built-in demo portfolio
}

// PolicyConfig holds the business rules. Zero values select the defaults.
type PolicyConfig struct {
	SuggestedIncreaseRatio float64            `yaml:"suggestedIncreaseRatio,omitempty"`
	UrgencyThresholdDays   int                `yaml:"urgencyThresholdDays,omitempty"`
	TaxRate                float64            `yaml:"taxRate,omitempty"` // percent
	TaxBrackets            []TaxBracketConfig `yaml:"taxBrackets,omitempty"`
}

// TaxBracketConfig is one progressive tax bracket.
type TaxBracketConfig struct {
	Threshold float64 `yaml:"threshold"`
	Rate      float64 `yaml:"rate"` // percent
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, markdown
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ledger.path", "")
	v.SetDefault("today", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	configuration, err := decode(v)
	if err != nil {
		return nil, err
	}
	configuration.dir = filepath.Dir(configPath)
	return configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
// Relative ledger paths resolve against the working directory.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}
	return decode(v)
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	configuration, err := decode(newViper())
	if err != nil {
		// Defaults alone always decode.
		panic(err)
	}
	return configuration
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// LedgerPath returns the configured ledger path resolved against the
// configuration file, or "" for the demo portfolio.
func (c *Configuration) LedgerPath() string {
	path := c.Ledger.Path
	if path == "" || filepath.IsAbs(path) || c.dir == "" {
		return path
	}
	return filepath.Join(c.dir, path)
}

// LoadLedger reads the configured ledger, falling back to the demo portfolio.
func (c *Configuration) LoadLedger() (*ledger.Ledger, error) {
	path := c.LedgerPath()
	if path == "" {
		return ledger.Fixture()
	}
	return ledger.Load(path)
}

// ReferenceDate returns the pinned date when one is configured and the date
// of now otherwise.
func (c *Configuration) ReferenceDate(now time.Time) (datetime.Date, error) {
	if c.Today == "" {
		return datetime.DateOf(now), nil
	}
	d, err := datetime.ParseDate(c.Today)
	if err != nil {
		return datetime.Date{}, fmt.Errorf("invalid reference date %q: %w", c.Today, err)
	}
	return d, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, err.Error())
	}
	if c.Today != "" {
		if _, err := datetime.ParseDate(c.Today); err != nil {
			warnings = append(warnings, fmt.Sprintf("Reference date %q is not a YYYY-MM-DD date - the current date will not be overridden", c.Today))
		}
	}

	pv := &validation.PolicyValidator{
		SuggestedIncreaseRatio: c.Policy.SuggestedIncreaseRatio,
		UrgencyThresholdDays:   c.Policy.UrgencyThresholdDays,
		TaxRate:                c.Policy.TaxRate,
	}
	for _, b := range c.Policy.TaxBrackets {
		pv.TaxBrackets = append(pv.TaxBrackets, validation.BracketConfig{Threshold: b.Threshold, Rate: b.Rate})
	}
	return append(warnings, pv.ValidateAll()...)
}
