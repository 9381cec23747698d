package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dooshek/heartbeat/internal/fileops"
	"github.com/dooshek/heartbeat/internal/logger"
	"github.com/dooshek/heartbeat/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	configFilename = "heartbeat.yaml"
)

// Store reads and writes one config file through FileOps.
type Store struct {
	fileOps  fileops.FileOps
	filename string
}

// NewStore uses the default ~/.config/heartbeat/heartbeat.yaml, or path when
// it is not empty.
func NewStore(path string) (*Store, error) {
	if path != "" {
		return &Store{
			fileOps:  fileops.NewFileOps(filepath.Dir(path)),
			filename: filepath.Base(path),
		}, nil
	}

	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file operations: %w", err)
	}
	return &Store{fileOps: fileOps, filename: configFilename}, nil
}

// Path is the location of the config file.
func (s *Store) Path() string {
	return filepath.Join(s.fileOps.GetConfigDir(), s.filename)
}

// LoadConfig returns nil, nil when no config file exists. Keys missing from
// the file keep their defaults.
func (s *Store) LoadConfig() (*types.Config, error) {
	if err := s.fileOps.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := s.fileOps.LoadConfig(s.filename)
	if err != nil {
		if errors.Is(err, fileops.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := types.DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Loudness.Validate(); err != nil {
		logger.Warnf("Loudness settings in %s are invalid (%v), using defaults", s.Path(), err)
		config.Loudness = types.DefaultConfig().Loudness
	}

	return config, nil
}

// LoadOrDefault falls back to the defaults when no file exists.
func (s *Store) LoadOrDefault() (*types.Config, error) {
	config, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	if config == nil {
		logger.Debugf("No config at %s, using defaults", s.Path())
		return types.DefaultConfig(), nil
	}
	return config, nil
}

func (s *Store) SaveConfig(config *types.Config) error {
	if err := config.Loudness.Validate(); err != nil {
		return fmt.Errorf("refusing to save config: %w", err)
	}

	if err := s.fileOps.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := s.fileOps.SaveConfig(s.filename, data); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	logger.Debugf("Saved config to %s", s.Path())
	return nil
}

// Marshal renders config as it would be saved.
func Marshal(config *types.Config) ([]byte, error) {
	return yaml.Marshal(config)
}
