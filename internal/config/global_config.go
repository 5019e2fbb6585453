// Package config loads the device configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/logger"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// GlobalConfig is the top level configuration.
type GlobalConfig struct {
	DeviceConfig  DeviceConfig         `json:"device_config,omitempty" yaml:"device_config,omitempty"`
	MQTTConfig    MQTTConfig           `json:"mqtt_config,omitempty" yaml:"mqtt_config,omitempty"`
	FetchConfig   FetchConfig          `json:"fetch_config,omitempty" yaml:"fetch_config,omitempty"`
	MonitorConfig MonitorConfig        `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	StorageConfig StorageConfig        `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	LogConfig     logger.FileLogConfig `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	MetricsConfig MetricsConfig        `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`
	PreviewConfig PreviewConfig        `json:"preview_config,omitempty" yaml:"preview_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		MQTTConfig:    NewDefaultMQTTConfig(),
		FetchConfig:   NewDefaultFetchConfig(),
		MonitorConfig: NewDefaultMonitorConfig(),
		StorageConfig: NewDefaultStorageConfig(),
		LogConfig:     logger.NewDefaultFileLogConfig(),
		MetricsConfig: NewDefaultMetricsConfig(),
		PreviewConfig: NewDefaultPreviewConfig(),
	}
}

// LoadGlobalConfig reads the file chosen by GetConfigPath over the defaults
// and then applies environment overrides. No file found is not an error.
func LoadGlobalConfig(providedPath string, log zerolog.Logger) (*GlobalConfig, error) {
	log = log.With().Str("component", "ConfigLoader").Logger()
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		log.Info().Msg("No config file found, using defaults")
	} else {
		data, err := readConfigFile(filePath)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to load config file content")
		}
		if err := parseConfigContent(data, filePath, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse config content")
		}
		log.Info().Str("path", filePath).Msg("Configuration loaded")
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func readConfigFile(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileBytes {
		return nil, fmt.Errorf("config file %s is larger than %d bytes", filePath, maxConfigFileBytes)
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	if isYAMLFile(filepath.Ext(filePath)) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to unmarshal YAML from '%s': %w", filePath, err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

func isYAMLFile(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".yaml" || ext == ".yml"
}

func applyEnvOverrides(cfg *GlobalConfig) {
	if secret := os.Getenv(EnvDeviceSecret); secret != "" {
		cfg.DeviceConfig.DeviceSecret = secret
	}
	if password := os.Getenv(EnvMQTTPassword); password != "" {
		cfg.MQTTConfig.Password = password
	}
	if cfg.MQTTConfig.ClientID == "" {
		cfg.MQTTConfig.ClientID = cfg.DeviceConfig.DeviceID
	}
}
