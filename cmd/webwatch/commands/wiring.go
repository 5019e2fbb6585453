package commands

import (
	"time"

	"github.com/aleister1102/webwatch/internal/config"
	"github.com/aleister1102/webwatch/internal/fetcher"
	"github.com/aleister1102/webwatch/internal/messaging"
	"github.com/aleister1102/webwatch/internal/monitor"
	"github.com/aleister1102/webwatch/internal/preview"
	"github.com/aleister1102/webwatch/internal/resources"
)

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func clientConfig(cfg *config.GlobalConfig) messaging.ClientConfig {
	mc := cfg.MQTTConfig
	return messaging.ClientConfig{
		BrokerURL:          mc.BrokerURL,
		ClientID:           mc.ClientID,
		Username:           mc.Username,
		Password:           mc.Password,
		InsecureSkipVerify: mc.InsecureSkipVerify,
		KeepAlive:          seconds(mc.KeepAliveSeconds),
		OperationTimeout:   seconds(mc.OperationTimeoutSeconds),
	}
}

func fetcherConfig(cfg *config.GlobalConfig) fetcher.Config {
	fc := cfg.FetchConfig
	return fetcher.Config{
		Timeout:            fc.Timeout(),
		MaxBodyBytes:       fc.MaxBodyBytes,
		UserAgent:          fc.UserAgent,
		InsecureSkipVerify: fc.InsecureSkipVerify,
	}
}

func serviceConfig(cfg *config.GlobalConfig) monitor.ServiceConfig {
	return monitor.ServiceConfig{
		DeviceSecret:      cfg.DeviceConfig.DeviceSecret,
		TickInterval:      seconds(cfg.MonitorConfig.TickSeconds),
		CommandBuffer:     cfg.MQTTConfig.CommandBuffer,
		QoS:               byte(cfg.MQTTConfig.QoS),
		ReconnectInterval: seconds(cfg.MQTTConfig.ReconnectIntervalSeconds),
		HistoryRetention:  time.Duration(cfg.StorageConfig.HistoryRetentionDays) * 24 * time.Hour,
	}
}

func previewConfig(cfg *config.GlobalConfig) preview.Config {
	pc := cfg.PreviewConfig
	return preview.Config{
		Timeout:   seconds(pc.TimeoutSeconds),
		MaxBytes:  pc.MaxBytes,
		UserAgent: pc.UserAgent,
	}
}

func reporterConfig(cfg *config.GlobalConfig) resources.ReporterConfig {
	rc := resources.DefaultReporterConfig()
	rc.Interval = time.Duration(cfg.MonitorConfig.ResourceReportMinutes) * time.Minute
	rc.SystemMemWarnPercent = cfg.MonitorConfig.MemWarnPercent
	return rc
}

func topicsFor(cfg *config.GlobalConfig) messaging.Topics {
	return messaging.NewTopics(cfg.DeviceConfig.DeviceID, cfg.DeviceConfig.DeviceSecret)
}
