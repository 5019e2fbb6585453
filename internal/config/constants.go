package config

const (
	// Environment overrides
	EnvConfigPath   = "WEBWATCH_CONFIG_PATH"
	EnvDeviceSecret = "WEBWATCH_DEVICE_SECRET"
	EnvMQTTPassword = "WEBWATCH_MQTT_PASSWORD"

	// MQTT Defaults
	DefaultMQTTBrokerURL               = "tcp://localhost:1883"
	DefaultMQTTKeepAliveSeconds        = 30
	DefaultMQTTQoS                     = 1
	DefaultMQTTReconnectIntervalSecs   = 2
	DefaultMQTTCommandBuffer           = 16
	DefaultMQTTOperationTimeoutSeconds = 10

	// Fetch Defaults
	DefaultFetchTimeoutSeconds = 8
	DefaultFetchMaxBodyBytes   = 8 << 20
	DefaultFetchUserAgent      = "webwatch/1.0"

	// Monitor Defaults
	DefaultMonitorTickSeconds           = 1
	DefaultMonitorResourceReportMinutes = 10
	DefaultMonitorMemWarnPercent        = 90

	// Storage Defaults
	DefaultStorageSitesFile              = "data/sites.json"
	DefaultStorageHistoryDBPath          = "data/history.db"
	DefaultStorageHistoryMaxContentBytes = 64 * 1024
	DefaultStorageHistoryRetentionDays   = 30
	DefaultStorageCompressionCodec       = "zstd"

	// Metrics Defaults
	DefaultMetricsListenAddress = ":9464"

	// Preview Defaults
	DefaultPreviewTimeoutSeconds = 8
	DefaultPreviewMaxBytes       = 400_000

	maxConfigFileBytes = 1 << 20
)
