package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("codec", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "zstd", "snappy", "gzip", "none":
			return true
		default:
			return false
		}
	})

	// Device ids end up inside topic names
	_ = validate.RegisterValidation("topicsafe", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), "/+#")
	})

	_ = validate.RegisterValidation("brokerurl", func(fl validator.FieldLevel) bool {
		url := strings.ToLower(fl.Field().String())
		for _, scheme := range []string{"tcp://", "ssl://", "tls://", "mqtt://", "mqtts://", "ws://", "wss://", "memory://"} {
			if strings.HasPrefix(url, scheme) {
				return true
			}
		}
		return false
	})

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" && !isSecretField(e.Field()) {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
}

func isSecretField(name string) bool {
	return name == "DeviceSecret" || name == "Password"
}
