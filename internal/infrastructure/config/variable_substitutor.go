package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/reglet-dev/distribution/internal/domain/entities"
)

// Variable pattern: {{ .vars.key }}
var varPattern = regexp.MustCompile(`\{\{\s*\.vars\.([a-zA-Z0-9_.]+)\s*\}\}`)

// VariableSubstitutor fills {{ .vars.key }} placeholders in the string
// fields of an app configuration: risk class labels and URLs, app
// versions, feature labels and supported countries.
type VariableSubstitutor struct {
	vars map[string]interface{}
}

// NewVariableSubstitutor creates a substitutor over vars. Nested maps are
// addressed with dots, e.g. {{ .vars.ios.latest }}.
func NewVariableSubstitutor(vars map[string]interface{}) *VariableSubstitutor {
	return &VariableSubstitutor{vars: vars}
}

// Substitute replaces every placeholder in cfg, in place. A placeholder
// naming an unknown variable is an error; every such field is reported.
func (s *VariableSubstitutor) Substitute(cfg *entities.ApplicationConfiguration) error {
	var errs *multierror.Error
	sub := func(field string, v *string) {
		out, err := s.substituteInString(*v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", field, err))
			return
		}
		*v = out
	}

	for i := range cfg.RiskScoreClasses.RiskClasses {
		rc := &cfg.RiskScoreClasses.RiskClasses[i]
		sub(fmt.Sprintf("risk-classes[%d].label", i), &rc.Label)
		sub(fmt.Sprintf("risk-classes[%d].url", i), &rc.URL)
	}
	sub("app-version.ios.latest", &cfg.AppVersion.IOS.Latest)
	sub("app-version.ios.min", &cfg.AppVersion.IOS.Min)
	sub("app-version.android.latest", &cfg.AppVersion.Android.Latest)
	sub("app-version.android.min", &cfg.AppVersion.Android.Min)
	for i := range cfg.AppFeatures {
		sub(fmt.Sprintf("app-features[%d].label", i), &cfg.AppFeatures[i].Label)
	}
	for i := range cfg.SupportedCountries {
		sub(fmt.Sprintf("supported-countries[%d]", i), &cfg.SupportedCountries[i])
	}

	return errs.ErrorOrNil()
}

// substituteInString replaces patterns with values.
func (s *VariableSubstitutor) substituteInString(str string) (string, error) {
	if !strings.Contains(str, "{{") {
		return str, nil
	}

	var lastErr error
	result := varPattern.ReplaceAllStringFunc(str, func(match string) string {
		submatches := varPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			lastErr = fmt.Errorf("invalid variable pattern: %s", match)
			return match
		}

		value, err := lookupVar(s.vars, submatches[1])
		if err != nil {
			lastErr = err
			return match
		}
		return fmt.Sprintf("%v", value)
	})

	if lastErr != nil {
		return "", lastErr
	}
	return result, nil
}

// lookupVar looks up a variable value by path (e.g., "ios.latest").
func lookupVar(vars map[string]interface{}, path string) (interface{}, error) {
	parts := strings.Split(path, ".")
	current := interface{}(vars)

	for i, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("variable path %s: cannot access %s (not a map)", path, strings.Join(parts[:i+1], "."))
		}

		value, exists := m[part]
		if !exists {
			return nil, fmt.Errorf("variable not found: %s", path)
		}
		current = value
	}

	switch v := current.(type) {
	case string, int, int64, uint64, float64, bool:
		return v, nil
	case map[string]interface{}:
		return nil, fmt.Errorf("variable path %s: is a map, not a value", path)
	default:
		val := reflect.ValueOf(v)
		switch val.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return val.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return val.Uint(), nil
		case reflect.Float32, reflect.Float64:
			return val.Float(), nil
		}
		return v, nil
	}
}
