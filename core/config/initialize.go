package config

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Initialize writes the default settings file into dir. An existing file is
// kept.
func Initialize(fsys afero.Fs, dir string, logger *log.Logger) error {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	path := filepath.Join(dir, ConfigurationName)
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("settings already exist, skipping", "path", path)
		return nil
	}

	if err := afero.WriteFile(fsys, path, defaultConfigData, 0644); err != nil {
		return fmt.Errorf("write %s: %w", ConfigurationName, err)
	}
	logger.Info("wrote default settings", "path", path)

	return nil
}
