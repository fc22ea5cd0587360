package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

var ErrNoMonitorConfig = errors.New("configuration not loaded")

// MonitorConfig is the document the monitor reads its settings from.
type MonitorConfig struct {
	// Interval is the refresh period in seconds.
	Interval int      `json:"interval" validate:"gte=0"`
	Metrics  []string `json:"metrics"`
}

// NewMonitorConfig creates a config selecting metrics.
func NewMonitorConfig(interval int, metrics []string) *MonitorConfig {
	return &MonitorConfig{
		Interval: interval,
		Metrics:  append([]string{}, metrics...),
	}
}

// Validate the monitor configuration.
func (m *MonitorConfig) Validate() error {
	return validator.New().Struct(m)
}

// WriteMonitorConfig replaces the file at path with mc, tab indented.
func WriteMonitorConfig(fsys afero.Fs, path string, mc *MonitorConfig) error {
	out := *mc
	if out.Metrics == nil {
		out.Metrics = []string{}
	}

	data, err := json.MarshalIndent(&out, "", "\t")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := afero.WriteFile(fsys, path, data, 0644); err != nil {
		return fmt.Errorf("write monitor config: %w", err)
	}
	return nil
}

// ReadMonitorConfig reads the file at path. It returns ErrNoMonitorConfig if
// the file does not exist.
func ReadMonitorConfig(fsys afero.Fs, path string) (*MonitorConfig, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoMonitorConfig
	}
	if err != nil {
		return nil, err
	}

	var out MonitorConfig
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse monitor config: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
