package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// LoadFs loads the configuration from the directory on the given filesystem.
func LoadFs(fsys afero.Fs, path string) (*Configuration, error) {
	// If given the path to a settings file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(fsys, filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}

	out := defaultConfig()
	if err := yaml.UnmarshalStrict(configContents, out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ConfigurationName, err)
	}

	out.configFs = fsys
	return out, nil
}

// LoadOrDefault loads the configuration from the directory, falling back to
// the built in defaults if the directory has no settings file.
func LoadOrDefault(fsys afero.Fs, path string, logger *log.Logger) (*Configuration, error) {
	cfg, err := LoadFs(fsys, path)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("no settings file, using defaults", "dir", path)
		return defaultConfig().WithFs(fsys), nil
	default:
		return nil, err
	}
}
