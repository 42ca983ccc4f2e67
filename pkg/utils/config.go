package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/exotargets/internal/types"
)

// Config represents the exotargets configuration
type Config struct {
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Archive     ArchiveConfig     `yaml:"archive" mapstructure:"archive"`
	Constraints ConstraintsConfig `yaml:"constraints" mapstructure:"constraints"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
	HZ          HZConfig          `yaml:"hz" mapstructure:"hz"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// PathsConfig locates inputs and outputs
type PathsConfig struct {
	DataDir    string   `yaml:"data_dir" mapstructure:"data_dir" validate:"required"`
	OutputDir  string   `yaml:"output_dir" mapstructure:"output_dir" validate:"required"`
	Catalogues []string `yaml:"catalogues" mapstructure:"catalogues"`
	QueryFile  string   `yaml:"query_file" mapstructure:"query_file"`
}

// ArchiveConfig contains the TAP service settings
type ArchiveConfig struct {
	URL             string   `yaml:"url" mapstructure:"url" validate:"required,url"`
	Table           string   `yaml:"table" mapstructure:"table" validate:"required"`
	Columns         []string `yaml:"columns" mapstructure:"columns" validate:"min=1,dive,required"`
	TimeoutSeconds  int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"gt=0"`
	CacheTTLMinutes int      `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes" validate:"gte=0"`
}

// ConstraintsConfig drives target reduction and visit selection
type ConstraintsConfig struct {
	Type          string   `yaml:"type" mapstructure:"type" validate:"oneof=Transit Eclipse"`
	DedupBy       []string `yaml:"dedup_by" mapstructure:"dedup_by" validate:"min=1,dive,required"`
	Tracked       []string `yaml:"tracked" mapstructure:"tracked" validate:"dive,required"`
	MinRadius     float64  `yaml:"min_radius" mapstructure:"min_radius" validate:"gte=0"`
	MaxRadius     float64  `yaml:"max_radius" mapstructure:"max_radius" validate:"gtfield=MinRadius"`
	MaxEAP        float64  `yaml:"max_eap" mapstructure:"max_eap" validate:"gte=0"`
	ScheduleTypes []string `yaml:"schedule_types" mapstructure:"schedule_types" validate:"dive,oneof=Transit Eclipse"`
	DateSeparator string   `yaml:"date_separator" mapstructure:"date_separator" validate:"required"`
}

// MetricsConfig contains spectroscopy metric settings
type MetricsConfig struct {
	SplitRadius float64 `yaml:"split_radius" mapstructure:"split_radius" validate:"gt=0"`
	SortByTSM   bool    `yaml:"sort_by_tsm" mapstructure:"sort_by_tsm"`
	Output      string  `yaml:"output" mapstructure:"output" validate:"required"`
}

// HZConfig describes the habitable zone grid
type HZConfig struct {
	TeffMin float64 `yaml:"teff_min" mapstructure:"teff_min" validate:"gt=0"`
	TeffMax float64 `yaml:"teff_max" mapstructure:"teff_max" validate:"gtfield=TeffMin"`
	LumMin  float64 `yaml:"lum_min" mapstructure:"lum_min" validate:"gt=0"`
	LumMax  float64 `yaml:"lum_max" mapstructure:"lum_max" validate:"gtfield=LumMin"`
	Points  int     `yaml:"points" mapstructure:"points" validate:"gte=2"`
}

// LoggingConfig mirrors logger.Options
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error off disabled"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=console json"`
	File   string `yaml:"file" mapstructure:"file"`
}

const (
	configDirName = ".exotargets"
	envPrefix     = "EXOTARGETS"
)

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "output",
			Catalogues: []string{
				filepath.Join("data", "jwst_cycle1.csv"),
				filepath.Join("data", "jwst_cycle2.csv"),
			},
		},
		Archive: ArchiveConfig{
			URL:             "https://exoplanetarchive.ipac.caltech.edu/TAP",
			Table:           "pscomppars",
			Columns:         []string{"pl_name", "pl_orbper", "pl_orbsmax", "pl_rade", "pl_bmasse", "pl_eqt", "st_teff"},
			TimeoutSeconds:  60,
			CacheTTLMinutes: 30,
		},
		Constraints: ConstraintsConfig{
			Type:          "Transit",
			DedupBy:       []string{"Target Name"},
			Tracked:       []string{"Radius [RE]", "SMA [au]", "Teff [K]"},
			MinRadius:     0,
			MaxRadius:     4,
			MaxEAP:        12,
			ScheduleTypes: []string{"Transit"},
			DateSeparator: ";",
		},
		Metrics: MetricsConfig{
			SplitRadius: 10,
			SortByTSM:   true,
			Output:      "tsm_esm.tsv",
		},
		HZ: HZConfig{
			TeffMin: 2600,
			TeffMax: 7200,
			LumMin:  1e-4,
			LumMax:  10,
			Points:  50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from path, or from the default search
// locations when path is empty. Missing keys keep their defaults and
// EXOTARGETS_ environment variables override both. When no file exists at
// the default locations a default one is created, and the environment still
// applies on top of it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, configDirName))
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := createDefaultConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to the default location
func SaveConfig(config *Config) error {
	configFile, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(config, configFile)
}

// SaveConfigTo writes configuration as YAML to path
func SaveConfigTo(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Configuration saved to: %s\n", path)
	return nil
}

// createDefaultConfig saves a default configuration
func createDefaultConfig() error {
	return SaveConfig(DefaultConfig())
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if err := validate.Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
			}
			return errorsmod.Wrapf(types.ErrInvalidArgument, "%s", strings.Join(fields, ", "))
		}
		return errorsmod.Wrap(types.ErrInvalidArgument, err.Error())
	}
	return nil
}

// CreateDirectories creates the data and output directories
func (c *Config) CreateDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.OutputDir} {
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, configDirName, "config.yaml"), nil
}

// OutputPath joins name onto the output directory
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.Paths.OutputDir, name)
}

// Timeout returns the archive request timeout
func (a ArchiveConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long archive answers are reused
func (a ArchiveConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLMinutes) * time.Minute
}
