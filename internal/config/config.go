// Package config reads the optional ccloudctl configuration file. The
// file is the lowest rung of the precedence ladder: flags override the
// CONFLUENT_API_* environment, which overrides anything set here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ccloudctl/pkg/logging"
)

const (
	userConfigDir  = ".config/ccloudctl"
	configFileName = "config.yaml"
)

// Config holds the file-backed connection settings.
type Config struct {
	// Endpoint is the control-plane base URL.
	Endpoint string `yaml:"endpoint,omitempty"`

	// APIKey and APISecret are the cloud credentials.
	APIKey    string `yaml:"api_key,omitempty"`
	APISecret string `yaml:"api_secret,omitempty"`

	// Timeout bounds each request, in seconds.
	Timeout int `yaml:"timeout,omitempty"`

	// Retries is the attempt budget for rate-limited requests.
	Retries int `yaml:"retries,omitempty"`
}

// GetDefaultConfigPathOrPanic returns ~/.config/ccloudctl, the directory
// Load reads config.yaml from when no --config-path is given.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}
	return filepath.Join(homeDir, userConfigDir)
}

// Load reads config.yaml from the given directory. A missing file is not
// an error; the zero config comes back and the caller's other sources
// take over. A malformed file is an error.
func Load(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)

	var config Config
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}
