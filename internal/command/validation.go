package command

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/aleister1102/webwatch/internal/models"
	"github.com/go-playground/validator/v10"
)

var siteIDPattern = regexp.MustCompile(`(?i)^[a-z0-9:_-]+$`)

// newValidator returns a validator with the site id rule and the
// mode-dependent field requirements registered.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("siteid", func(fl validator.FieldLevel) bool {
		return siteIDPattern.MatchString(fl.Field().String())
	})

	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(SitePayload)
		mode, _ := models.ParseExtractionMode(p.Mode)
		switch mode {
		case models.ModeSelector:
			if strings.TrimSpace(p.SelectorCSS) == "" {
				sl.ReportError(p.SelectorCSS, "selector_css", "SelectorCSS", "required_for_mode", string(mode))
			}
		case models.ModeMarkers:
			if strings.TrimSpace(p.StartMarker) == "" {
				sl.ReportError(p.StartMarker, "start_marker", "StartMarker", "required_for_mode", string(mode))
			}
			if strings.TrimSpace(p.EndMarker) == "" {
				sl.ReportError(p.EndMarker, "end_marker", "EndMarker", "required_for_mode", string(mode))
			}
		case models.ModeRegex:
			if strings.TrimSpace(p.Regex) == "" {
				sl.ReportError(p.Regex, "regex", "Regex", "required_for_mode", string(mode))
			}
		}
	}, SitePayload{})

	return validate
}

// formatValidationError turns validator errors into a single readable error.
func formatValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("payload validation error: %w", err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("'%s' failed rule '%s'", e.Field(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("invalid payload: %s", strings.Join(messages, "; "))
}
