// Package messaging carries commands and events over MQTT.
package messaging

import (
	"fmt"

	"github.com/aleister1102/webwatch/internal/security"
)

// Topics are the per-device command and event topics.
type Topics struct {
	Base     string
	Commands string
	Events   string
}

// NewTopics derives the topics for a device. Knowing the device id alone is
// not enough to guess them.
func NewTopics(deviceID, secret string) Topics {
	base := fmt.Sprintf("devices/%s-%s", deviceID, security.DeriveTopicSuffix(deviceID, secret))
	return Topics{
		Base:     base,
		Commands: base + "/commands",
		Events:   base + "/events",
	}
}
