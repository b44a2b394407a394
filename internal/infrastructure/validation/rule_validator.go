package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/hashicorp/go-multierror"

	"github.com/reglet-dev/distribution/internal/domain/entities"
)

type rule struct {
	source  string
	program *vm.Program
}

// RuleValidator evaluates operator-supplied boolean expressions against
// an app configuration. Every rule must evaluate to true.
//
// Available variables: min_risk_score, risk_classes, transmission, duration,
// days, attenuation, lower_threshold, upper_threshold, weight_low,
// weight_mid, weight_high, normalization_divisor, ios_latest, ios_min,
// android_latest, android_min, features, supported_countries.
type RuleValidator struct {
	rules []rule
}

// NewRuleValidator compiles the given expressions. A rule that does not
// compile to a boolean expression is a configuration error.
func NewRuleValidator(expressions []string) (*RuleValidator, error) {
	env := ruleEnv(&entities.ApplicationConfiguration{})

	v := &RuleValidator{rules: make([]rule, 0, len(expressions))}
	var errs *multierror.Error
	for _, source := range expressions {
		program, err := expr.Compile(source, expr.Env(env), expr.AsBool())
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid rule %q: %w", source, err))
			continue
		}
		v.rules = append(v.rules, rule{source: source, program: program})
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return v, nil
}

// Len returns the number of compiled rules.
func (v *RuleValidator) Len() int {
	return len(v.rules)
}

// Validate implements ports.ConfigValidator.
func (v *RuleValidator) Validate(ctx context.Context, cfg *entities.ApplicationConfiguration) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	env := ruleEnv(cfg)
	var errs *multierror.Error
	for _, r := range v.rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := expr.Run(r.program, env)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("rule %q: %w", r.source, err))
			continue
		}
		if ok, _ := out.(bool); !ok {
			errs = multierror.Append(errs, fmt.Errorf("rule %q not satisfied", r.source))
		}
	}
	return errs.ErrorOrNil()
}

func ruleEnv(cfg *entities.ApplicationConfiguration) map[string]any {
	features := make(map[string]int, len(cfg.AppFeatures))
	for _, f := range cfg.AppFeatures {
		features[f.Label] = f.Value
	}
	countries := cfg.SupportedCountries
	if countries == nil {
		countries = []string{}
	}
	ad := cfg.AttenuationDuration
	return map[string]any{
		"min_risk_score":        cfg.MinRiskScore,
		"risk_classes":          len(cfg.RiskScoreClasses.RiskClasses),
		"transmission":          ints(cfg.ExposureConfig.Transmission),
		"duration":              ints(cfg.ExposureConfig.Duration),
		"days":                  ints(cfg.ExposureConfig.Days),
		"attenuation":           ints(cfg.ExposureConfig.Attenuation),
		"lower_threshold":       ad.Thresholds.Lower,
		"upper_threshold":       ad.Thresholds.Upper,
		"weight_low":            ad.Weights.Low,
		"weight_mid":            ad.Weights.Mid,
		"weight_high":           ad.Weights.High,
		"normalization_divisor": ad.RiskScoreNormalizationDivisor,
		"ios_latest":            cfg.AppVersion.IOS.Latest,
		"ios_min":               cfg.AppVersion.IOS.Min,
		"android_latest":        cfg.AppVersion.Android.Latest,
		"android_min":           cfg.AppVersion.Android.Min,
		"features":              features,
		"supported_countries":   countries,
	}
}

func ints(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
