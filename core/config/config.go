package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/settings.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "settings.yaml"
)

type Configuration struct {
	configFs afero.Fs

	// FIFOPath is the named pipe shared with the monitor.
	FIFOPath string `json:"fifo_path" validate:"required"`
	// MonitorPath is the monitor executable.
	MonitorPath string `json:"monitor_path" validate:"required"`
	// MetricsPath holds "<label>: <name>" lines written by the monitor.
	MetricsPath string `json:"metrics_path" validate:"required"`
	// StatusPath holds the monitor's human readable status report.
	StatusPath string `json:"status_path" validate:"required"`

	MonitorConfigPath string `json:"monitor_config_path" validate:"required"`
	DefaultInterval   int    `json:"default_interval" validate:"gte=0"`

	MaxJobs     int    `json:"max_jobs" validate:"gte=1"`
	HistoryFile string `json:"history_file"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Fs returns the filesystem the monitor files are read from and written to.
func (c *Configuration) Fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// WithFs returns a copy of the configuration that uses fs for file access.
func (c *Configuration) WithFs(fs afero.Fs) *Configuration {
	out := *c
	out.configFs = fs
	return &out
}

// Default returns the built in configuration.
func Default() *Configuration {
	return defaultConfig()
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
