package config

import (
	"time"

	"github.com/aleister1102/webwatch/internal/models"
)

// DeviceConfig identifies the device on the broker.
type DeviceConfig struct {
	DeviceID     string `json:"device_id,omitempty" yaml:"device_id,omitempty" validate:"required,max=128,topicsafe"`
	DeviceSecret string `json:"device_secret,omitempty" yaml:"device_secret,omitempty" validate:"required"`
}

// MQTTConfig defines the broker connection.
type MQTTConfig struct {
	BrokerURL                string `json:"broker_url,omitempty" yaml:"broker_url,omitempty" validate:"required,brokerurl"`
	ClientID                 string `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Username                 string `json:"username,omitempty" yaml:"username,omitempty"`
	Password                 string `json:"password,omitempty" yaml:"password,omitempty"`
	InsecureSkipVerify       bool   `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
	KeepAliveSeconds         int    `json:"keep_alive_seconds,omitempty" yaml:"keep_alive_seconds,omitempty" validate:"min=0"`
	QoS                      int    `json:"qos" yaml:"qos" validate:"min=0,max=2"`
	ReconnectIntervalSeconds int    `json:"reconnect_interval_seconds,omitempty" yaml:"reconnect_interval_seconds,omitempty" validate:"min=1"`
	CommandBuffer            int    `json:"command_buffer,omitempty" yaml:"command_buffer,omitempty" validate:"min=1"`
	OperationTimeoutSeconds  int    `json:"operation_timeout_seconds,omitempty" yaml:"operation_timeout_seconds,omitempty" validate:"min=1"`
}

// NewDefaultMQTTConfig creates default MQTT configuration
func NewDefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		BrokerURL:                DefaultMQTTBrokerURL,
		KeepAliveSeconds:         DefaultMQTTKeepAliveSeconds,
		QoS:                      DefaultMQTTQoS,
		ReconnectIntervalSeconds: DefaultMQTTReconnectIntervalSecs,
		CommandBuffer:            DefaultMQTTCommandBuffer,
		OperationTimeoutSeconds:  DefaultMQTTOperationTimeoutSeconds,
	}
}

// FetchConfig defines the page fetcher.
type FetchConfig struct {
	TimeoutSeconds     int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"min=1,max=120"`
	MaxBodyBytes       int    `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty" validate:"min=1"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
}

// NewDefaultFetchConfig creates default fetch configuration
func NewDefaultFetchConfig() FetchConfig {
	return FetchConfig{
		TimeoutSeconds: DefaultFetchTimeoutSeconds,
		MaxBodyBytes:   DefaultFetchMaxBodyBytes,
		UserAgent:      DefaultFetchUserAgent,
	}
}

// Timeout returns the fetch timeout as a duration.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MonitorConfig defines the control loop.
type MonitorConfig struct {
	TickSeconds           int                 `json:"tick_seconds,omitempty" yaml:"tick_seconds,omitempty" validate:"min=1"`
	ResourceReportMinutes int                 `json:"resource_report_minutes,omitempty" yaml:"resource_report_minutes,omitempty" validate:"min=0"`
	MemWarnPercent        float64             `json:"mem_warn_percent,omitempty" yaml:"mem_warn_percent,omitempty" validate:"min=0,max=100"`
	InitialSites          []models.SiteConfig `json:"initial_sites,omitempty" yaml:"initial_sites,omitempty" validate:"dive"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		TickSeconds:           DefaultMonitorTickSeconds,
		ResourceReportMinutes: DefaultMonitorResourceReportMinutes,
		MemWarnPercent:        DefaultMonitorMemWarnPercent,
	}
}

// StorageConfig defines where sites and history are kept.
type StorageConfig struct {
	SitesFile              string `json:"sites_file,omitempty" yaml:"sites_file,omitempty" validate:"required"`
	HistoryDBPath          string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty"`
	HistoryMaxContentBytes int    `json:"history_max_content_bytes,omitempty" yaml:"history_max_content_bytes,omitempty" validate:"min=0"`
	HistoryRetentionDays   int    `json:"history_retention_days,omitempty" yaml:"history_retention_days,omitempty" validate:"min=0"`
	CompressionCodec       string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,codec"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		SitesFile:              DefaultStorageSitesFile,
		HistoryDBPath:          DefaultStorageHistoryDBPath,
		HistoryMaxContentBytes: DefaultStorageHistoryMaxContentBytes,
		HistoryRetentionDays:   DefaultStorageHistoryRetentionDays,
		CompressionCodec:       DefaultStorageCompressionCodec,
	}
}

// MetricsConfig defines the Prometheus exporter.
type MetricsConfig struct {
	Enabled       bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	ListenAddress string `json:"listen_address,omitempty" yaml:"listen_address,omitempty" validate:"omitempty,hostname_port"`
}

// NewDefaultMetricsConfig creates default metrics configuration
func NewDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{ListenAddress: DefaultMetricsListenAddress}
}

// PreviewConfig defines one-shot page previews.
type PreviewConfig struct {
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"min=1,max=120"`
	MaxBytes       int    `json:"max_bytes,omitempty" yaml:"max_bytes,omitempty" validate:"min=1"`
	UserAgent      string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
}

// NewDefaultPreviewConfig creates default preview configuration
func NewDefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		TimeoutSeconds: DefaultPreviewTimeoutSeconds,
		MaxBytes:       DefaultPreviewMaxBytes,
	}
}
