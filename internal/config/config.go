// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for home-affordability.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
	Plan     PlanConfig     `yaml:"plan,omitempty"`
	Listings ListingsConfig `yaml:"listings,omitempty"`
	State    StateConfig    `yaml:"state,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// PlanConfig holds the assumptions of the guided plan.
type PlanConfig struct {
	DownPaymentPercent float64 `yaml:"downPaymentPercent,omitempty"`
	InterestRate       float64 `yaml:"interestRate,omitempty"` // annual, percent
	LoanDuration       int     `yaml:"loanDuration,omitempty"` // years
}

// ListingsConfig holds the settings of the listings search API.
type ListingsConfig struct {
	BaseURL           string        `yaml:"baseUrl,omitempty"`
	Host              string        `yaml:"host,omitempty"`
	APIKey            string        `yaml:"apiKey,omitempty"`
	HomeType          string        `yaml:"homeType,omitempty"`
	Limit             int           `yaml:"limit,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond,omitempty"`
}

// StateConfig selects where the form record is persisted.
type StateConfig struct {
	Backend   string `yaml:"backend,omitempty"` // file, redis, none
	Path      string `yaml:"path,omitempty"`
	RedisAddr string `yaml:"redisAddr,omitempty"`
	Key       string `yaml:"key,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("output.format", constants.OutputFormatPretty)

	v.SetDefault("plan.downPaymentPercent", constants.GuidedDownPaymentPercent)
	v.SetDefault("plan.interestRate", constants.GuidedInterestRate)
	v.SetDefault("plan.loanDuration", constants.DefaultLoanDuration)

	v.SetDefault("listings.baseUrl", constants.DefaultListingsBaseURL)
	v.SetDefault("listings.host", constants.DefaultListingsHost)
	v.SetDefault("listings.homeType", constants.DefaultListingsHomeType)
	v.SetDefault("listings.limit", constants.DefaultListingsLimit)
	v.SetDefault("listings.timeout", "15s")
	v.SetDefault("listings.requestsPerSecond", constants.DefaultListingsRequestsPerSecond)
	_ = v.BindEnv("listings.apiKey", constants.EnvPrefix+"_LISTINGS_APIKEY", "RAPIDAPI_KEY")

	v.SetDefault("state.backend", constants.StateBackendFile)
	v.SetDefault("state.path", constants.DefaultStatePath)
	v.SetDefault("state.key", constants.DefaultStateKey)
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

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// Defaults returns the configuration used when no config file is present.
func Defaults() (*Configuration, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if err := configuration.validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func (c *Configuration) validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Plan.DownPaymentPercent < 0 || c.Plan.DownPaymentPercent > constants.PercentageMultiplier {
		return fmt.Errorf("plan.downPaymentPercent must be between 0 and 100, got %v", c.Plan.DownPaymentPercent)
	}
	if err := validation.NonNegativeAmount("plan.interestRate", c.Plan.InterestRate); err != nil {
		return err
	}
	if c.Plan.LoanDuration <= 0 || c.Plan.LoanDuration > constants.MaxLoanDuration {
		return fmt.Errorf("plan.loanDuration must be between 1 and %d, got %d", constants.MaxLoanDuration, c.Plan.LoanDuration)
	}
	switch c.State.Backend {
	case constants.StateBackendFile, constants.StateBackendRedis, constants.StateBackendNone:
	default:
		return fmt.Errorf("state.backend must be one of %s, %s or %s, got %q",
			constants.StateBackendFile, constants.StateBackendRedis, constants.StateBackendNone, c.State.Backend)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if strings.TrimSpace(c.Listings.APIKey) == "" {
		warnings = append(warnings, "listings.apiKey is not set; listings searches will be rejected by the API")
	}
	if c.Listings.Limit <= 0 {
		warnings = append(warnings, fmt.Sprintf("listings.limit %d is not positive; using %d",
			c.Listings.Limit, constants.DefaultListingsLimit))
	}
	if c.Listings.RequestsPerSecond <= 0 {
		warnings = append(warnings, "listings.requestsPerSecond is not positive; outbound searches are not rate limited")
	}
	if c.State.Backend == constants.StateBackendRedis && c.State.RedisAddr == "" {
		warnings = append(warnings, "state.redisAddr is empty; the redis client will use localhost:6379")
	}
	if c.State.Backend == constants.StateBackendFile && c.State.Path == "" {
		warnings = append(warnings, fmt.Sprintf("state.path is empty; using %s", constants.DefaultStatePath))
	}

	return warnings
}
