package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/reglet-dev/distribution/internal/application/dto"
	apperrors "github.com/reglet-dev/distribution/internal/application/errors"
	"github.com/reglet-dev/distribution/internal/domain/structure"
	"github.com/reglet-dev/distribution/internal/domain/values"
)

// EnvPrefix prefixes environment overrides, e.g. DISTRIBUTION_PATHS_OUTPUT.
const EnvPrefix = "DISTRIBUTION"

// ServiceConfig is the resolved configuration of the distribution service.
// It is a plain value: build one per run and pass it down.
type ServiceConfig struct {
	Paths      PathsConfig      `mapstructure:"paths" yaml:"paths"`
	Structure  StructureConfig  `mapstructure:"structure" yaml:"structure"`
	AppConfig  AppConfigConfig  `mapstructure:"app-config" yaml:"app-config"`
	Checksum   ChecksumConfig   `mapstructure:"checksum" yaml:"checksum"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`

	// BaseDir resolves relative parameter files; it is the directory of the
	// config file, or empty for the working directory.
	BaseDir string `mapstructure:"-" yaml:"-"`
}

// PathsConfig configures the output location.
type PathsConfig struct {
	Output         string `mapstructure:"output" yaml:"output"`
	RecreateOutput bool   `mapstructure:"recreate-output" yaml:"recreate-output"`
}

// StructureConfig names the directories and files of the output tree.
type StructureConfig struct {
	Prefix        []string `mapstructure:"prefix" yaml:"prefix"`
	Configuration string   `mapstructure:"configuration" yaml:"configuration"`
	Country       string   `mapstructure:"country" yaml:"country"`
	Index         string   `mapstructure:"index" yaml:"index"`
	Artifact      string   `mapstructure:"artifact" yaml:"artifact"`
}

// AppConfigConfig locates the per-country app configuration sources.
type AppConfigConfig struct {
	CountryFiles   map[string]string      `mapstructure:"country-files" yaml:"country-files"`
	ParametersFile string                 `mapstructure:"parameters-file" yaml:"parameters-file"`
	Countries      []string               `mapstructure:"countries" yaml:"countries"`
	Concurrency    int                    `mapstructure:"concurrency" yaml:"concurrency"`
	// Vars feed {{ .vars.key }} placeholders; keys are matched lower-cased.
	Vars map[string]interface{} `mapstructure:"vars" yaml:"vars"`
}

// ChecksumConfig selects the sidecar digest.
type ChecksumConfig struct {
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm"`
	Suffix    string `mapstructure:"suffix" yaml:"suffix"`
}

// ValidationConfig configures the validators beyond the built-in rules.
type ValidationConfig struct {
	Rules  []string `mapstructure:"rules" yaml:"rules"`
	Schema bool     `mapstructure:"schema" yaml:"schema"`
}

// DefaultServiceConfig returns the configuration used when no file is given.
func DefaultServiceConfig() ServiceConfig {
	layout := dto.DefaultLayout()
	return ServiceConfig{
		Paths: PathsConfig{
			Output:         "out",
			RecreateOutput: true,
		},
		Structure: StructureConfig{
			Prefix:        []string{},
			Configuration: layout.Configuration,
			Country:       layout.Country,
			Index:         layout.Index,
			Artifact:      layout.Artifact,
		},
		AppConfig: AppConfigConfig{
			ParametersFile: "app-config.yaml",
			Countries:      []string{"DE"},
			Concurrency:    4,
			CountryFiles:   map[string]string{},
			Vars:           map[string]interface{}{},
		},
		Checksum: ChecksumConfig{
			Algorithm: "sha256",
			Suffix:    structure.DefaultChecksumSuffix,
		},
		Validation: ValidationConfig{
			Schema: true,
			Rules:  []string{},
		},
	}
}

// LoadServiceConfig reads the service configuration from path (optional)
// and the environment, on top of DefaultServiceConfig.
func LoadServiceConfig(path string) (ServiceConfig, error) {
	v := viper.New()
	setDefaults(v, DefaultServiceConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	baseDir := ""
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return ServiceConfig{}, apperrors.NewConfigurationError("service", "failed to read config file", err)
		}
		baseDir = filepath.Dir(path)
	}

	var cfg ServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ServiceConfig{}, apperrors.NewConfigurationError("service", "failed to decode config", err)
	}
	cfg.BaseDir = baseDir

	// viper lower-cases map keys
	files := make(map[string]string, len(cfg.AppConfig.CountryFiles))
	for k, p := range cfg.AppConfig.CountryFiles {
		files[strings.ToUpper(k)] = p
	}
	cfg.AppConfig.CountryFiles = files

	if err := cfg.Validate(); err != nil {
		return ServiceConfig{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d ServiceConfig) {
	v.SetDefault("paths.output", d.Paths.Output)
	v.SetDefault("paths.recreate-output", d.Paths.RecreateOutput)
	v.SetDefault("structure.prefix", d.Structure.Prefix)
	v.SetDefault("structure.configuration", d.Structure.Configuration)
	v.SetDefault("structure.country", d.Structure.Country)
	v.SetDefault("structure.index", d.Structure.Index)
	v.SetDefault("structure.artifact", d.Structure.Artifact)
	v.SetDefault("app-config.parameters-file", d.AppConfig.ParametersFile)
	v.SetDefault("app-config.countries", d.AppConfig.Countries)
	v.SetDefault("app-config.concurrency", d.AppConfig.Concurrency)
	v.SetDefault("app-config.country-files", d.AppConfig.CountryFiles)
	v.SetDefault("app-config.vars", d.AppConfig.Vars)
	v.SetDefault("checksum.algorithm", d.Checksum.Algorithm)
	v.SetDefault("checksum.suffix", d.Checksum.Suffix)
	v.SetDefault("validation.schema", d.Validation.Schema)
	v.SetDefault("validation.rules", d.Validation.Rules)
}

// Validate checks the configuration before anything is built.
func (c ServiceConfig) Validate() error {
	var errs *multierror.Error

	if strings.TrimSpace(c.Paths.Output) == "" {
		errs = multierror.Append(errs, errors.New("paths.output is required"))
	}
	if c.AppConfig.Concurrency < 0 {
		errs = multierror.Append(errs, fmt.Errorf("app-config.concurrency %d must not be negative", c.AppConfig.Concurrency))
	}
	if _, err := c.Countries(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("app-config.countries: %w", err))
	}
	for key := range c.AppConfig.CountryFiles {
		if _, err := values.NewCountryCode(key); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("app-config.country-files: %w", err))
		}
	}
	names := append([]string{
		c.Structure.Configuration,
		c.Structure.Country,
		c.Structure.Index,
		c.Structure.Artifact,
	}, c.Structure.Prefix...)
	for _, name := range names {
		if err := structure.ValidateName(name); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("structure: %w", err))
		}
	}
	// Country directories share a parent with the index.
	if _, err := values.NewCountryCode(c.Structure.Index); err == nil {
		errs = multierror.Append(errs, fmt.Errorf("structure.index %q collides with country directory names", c.Structure.Index))
	}
	if strings.ContainsAny(c.Checksum.Suffix, `/\`) {
		errs = multierror.Append(errs, fmt.Errorf("checksum.suffix %q contains a path separator", c.Checksum.Suffix))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return apperrors.NewConfigurationError("service", "invalid configuration", err)
	}
	return nil
}

// Countries returns the configured country codes, normalized and deduplicated.
func (c ServiceConfig) Countries() ([]values.CountryCode, error) {
	return values.ParseCountryCodes(c.AppConfig.Countries)
}

// ParametersFile implements ports.ParametersSource.
func (c ServiceConfig) ParametersFile(key string) string {
	p, ok := c.AppConfig.CountryFiles[strings.ToUpper(key)]
	if !ok {
		p = c.AppConfig.ParametersFile
	}
	if p == "" || filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Layout returns the output tree layout.
func (c ServiceConfig) Layout() dto.Layout {
	return dto.Layout{
		Prefix:        append([]string(nil), c.Structure.Prefix...),
		Configuration: c.Structure.Configuration,
		Country:       c.Structure.Country,
		Index:         c.Structure.Index,
		Artifact:      c.Structure.Artifact,
	}
}

// OutputDir returns the absolute output directory.
func (c ServiceConfig) OutputDir() (string, error) {
	abs, err := filepath.Abs(c.Paths.Output)
	if err != nil {
		return "", apperrors.NewConfigurationError("paths", "cannot resolve output directory", err)
	}
	if abs == string(os.PathSeparator) {
		return "", apperrors.NewConfigurationError("paths", "refusing to use the filesystem root as output", nil)
	}
	return abs, nil
}
