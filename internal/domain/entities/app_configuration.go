// Package entities contains domain entities for the distribution domain model.
package entities

import (
	"fmt"
	"math"
	"net/url"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-multierror"
	"github.com/reglet-dev/distribution/internal/domain/values"
)

// Bounds of the app configuration parameters.
const (
	MaxRiskScore        = 72
	RiskBucketCount     = 8
	MaxRiskLevel        = 8
	MaxAttenuationValue = 100
	MaxNormalization    = 1000
)

// ApplicationConfiguration is the per-country configuration shipped to the
// mobile apps.
type ApplicationConfiguration struct {
	MinRiskScore        int                      `yaml:"min-risk-score" json:"min-risk-score"`
	RiskScoreClasses    RiskScoreClassification  `yaml:"risk-score-classes" json:"risk-score-classes"`
	ExposureConfig      ExposureConfiguration    `yaml:"exposure-config" json:"exposure-config"`
	AttenuationDuration AttenuationDuration      `yaml:"attenuation-duration" json:"attenuation-duration"`
	AppVersion          ApplicationVersionConfig `yaml:"app-version" json:"app-version"`
	AppFeatures         []AppFeature             `yaml:"app-features,omitempty" json:"app-features,omitempty"`
	SupportedCountries  []string                 `yaml:"supported-countries,omitempty" json:"supported-countries,omitempty"`
}

// RiskScoreClassification partitions [0, MaxRiskScore] into labelled classes.
type RiskScoreClassification struct {
	RiskClasses []RiskScoreClass `yaml:"risk-classes" json:"risk-classes"`
}

// RiskScoreClass covers the half-open range [Min, Max).
type RiskScoreClass struct {
	Label string `yaml:"label" json:"label"`
	Min   int    `yaml:"min" json:"min"`
	Max   int    `yaml:"max" json:"max"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
}

// ExposureConfiguration holds one risk level per bucket for each exposure factor.
type ExposureConfiguration struct {
	Transmission []int `yaml:"transmission" json:"transmission"`
	Duration     []int `yaml:"duration" json:"duration"`
	Days         []int `yaml:"days" json:"days"`
	Attenuation  []int `yaml:"attenuation" json:"attenuation"`
}

// AttenuationDuration configures attenuation-based duration weighting.
type AttenuationDuration struct {
	Thresholds                    AttenuationThresholds `yaml:"thresholds" json:"thresholds"`
	Weights                       AttenuationWeights    `yaml:"weights" json:"weights"`
	DefaultBucketOffset           int                   `yaml:"default-bucket-offset" json:"default-bucket-offset"`
	RiskScoreNormalizationDivisor int                   `yaml:"risk-score-normalization-divisor" json:"risk-score-normalization-divisor"`
}

// AttenuationThresholds split attenuation into low, mid and high ranges.
type AttenuationThresholds struct {
	Lower int `yaml:"lower" json:"lower"`
	Upper int `yaml:"upper" json:"upper"`
}

// AttenuationWeights weight the time spent in each attenuation range.
type AttenuationWeights struct {
	Low  float64 `yaml:"low" json:"low"`
	Mid  float64 `yaml:"mid" json:"mid"`
	High float64 `yaml:"high" json:"high"`
}

// ApplicationVersionConfig holds version constraints per platform.
type ApplicationVersionConfig struct {
	IOS     ApplicationVersionInfo `yaml:"ios" json:"ios"`
	Android ApplicationVersionInfo `yaml:"android" json:"android"`
}

// ApplicationVersionInfo is the latest and the minimum supported app version.
type ApplicationVersionInfo struct {
	Latest string `yaml:"latest" json:"latest"`
	Min    string `yaml:"min" json:"min"`
}

// AppFeature is a feature flag passed through to the apps.
type AppFeature struct {
	Label string `yaml:"label" json:"label"`
	Value int    `yaml:"value" json:"value"`
}

// Validate checks the business rules of the configuration and reports
// every violation found.
func (c *ApplicationConfiguration) Validate() error {
	var result *multierror.Error

	if c.MinRiskScore < 0 || c.MinRiskScore > MaxRiskScore {
		result = multierror.Append(result, fmt.Errorf("min-risk-score %d out of range [0, %d]", c.MinRiskScore, MaxRiskScore))
	}

	if err := c.RiskScoreClasses.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.ExposureConfig.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.AttenuationDuration.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.AppVersion.IOS.Validate("ios"); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.AppVersion.Android.Validate("android"); err != nil {
		result = multierror.Append(result, err)
	}

	labels := make(map[string]bool)
	for i, feature := range c.AppFeatures {
		if feature.Label == "" {
			result = multierror.Append(result, fmt.Errorf("app-features[%d]: label is required", i))
		} else if labels[feature.Label] {
			result = multierror.Append(result, fmt.Errorf("app-features: duplicate label %q", feature.Label))
		}
		labels[feature.Label] = true
	}

	for _, code := range c.SupportedCountries {
		if _, err := values.NewCountryCode(code); err != nil {
			result = multierror.Append(result, fmt.Errorf("supported-countries: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// Validate checks that the classes are well formed and cover
// [0, MaxRiskScore] without gaps or overlaps.
func (r RiskScoreClassification) Validate() error {
	if len(r.RiskClasses) == 0 {
		return fmt.Errorf("risk-score-classes: at least one class is required")
	}

	var result *multierror.Error
	classes := make([]RiskScoreClass, len(r.RiskClasses))
	copy(classes, r.RiskClasses)
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].Min < classes[j].Min })

	for _, class := range classes {
		if class.Label == "" {
			result = multierror.Append(result, fmt.Errorf("risk-score-classes: label is required"))
		}
		if class.Min < 0 || class.Max > MaxRiskScore || class.Min >= class.Max {
			result = multierror.Append(result, fmt.Errorf("risk-score-classes %q: invalid range [%d, %d)", class.Label, class.Min, class.Max))
		}
		if !isHTTPURL(class.URL) {
			result = multierror.Append(result, fmt.Errorf("risk-score-classes %q: invalid url %q", class.Label, class.URL))
		}
	}
	if result.ErrorOrNil() != nil {
		return result
	}

	next := 0
	for _, class := range classes {
		if class.Min != next {
			return fmt.Errorf("risk-score-classes: gap or overlap at %d", next)
		}
		next = class.Max
	}
	if next != MaxRiskScore {
		return fmt.Errorf("risk-score-classes: range ends at %d, want %d", next, MaxRiskScore)
	}
	return nil
}

// Validate checks that every factor has RiskBucketCount levels in [0, MaxRiskLevel].
func (e ExposureConfiguration) Validate() error {
	var result *multierror.Error
	factors := []struct {
		name   string
		levels []int
	}{
		{"transmission", e.Transmission},
		{"duration", e.Duration},
		{"days", e.Days},
		{"attenuation", e.Attenuation},
	}
	for _, f := range factors {
		if len(f.levels) != RiskBucketCount {
			result = multierror.Append(result, fmt.Errorf("exposure-config.%s: want %d buckets, got %d", f.name, RiskBucketCount, len(f.levels)))
			continue
		}
		for i, level := range f.levels {
			if level < 0 || level > MaxRiskLevel {
				result = multierror.Append(result, fmt.Errorf("exposure-config.%s[%d]: level %d out of range [0, %d]", f.name, i, level, MaxRiskLevel))
			}
		}
	}
	return result.ErrorOrNil()
}

// Validate checks thresholds, weights, offset and normalization divisor.
func (a AttenuationDuration) Validate() error {
	var result *multierror.Error

	t := a.Thresholds
	if t.Lower < 0 || t.Upper > MaxAttenuationValue || t.Lower > t.Upper {
		result = multierror.Append(result, fmt.Errorf("attenuation-duration.thresholds: invalid range [%d, %d]", t.Lower, t.Upper))
	}

	weights := []struct {
		name  string
		value float64
	}{
		{"low", a.Weights.Low},
		{"mid", a.Weights.Mid},
		{"high", a.Weights.High},
	}
	for _, w := range weights {
		if math.IsNaN(w.value) || w.value < 0 || w.value > 1 {
			result = multierror.Append(result, fmt.Errorf("attenuation-duration.weights.%s: %g out of range [0, 1]", w.name, w.value))
		}
	}

	if a.DefaultBucketOffset < 0 || a.DefaultBucketOffset > 1 {
		result = multierror.Append(result, fmt.Errorf("attenuation-duration.default-bucket-offset: %d out of range [0, 1]", a.DefaultBucketOffset))
	}
	if a.RiskScoreNormalizationDivisor < 1 || a.RiskScoreNormalizationDivisor > MaxNormalization {
		result = multierror.Append(result, fmt.Errorf("attenuation-duration.risk-score-normalization-divisor: %d out of range [1, %d]", a.RiskScoreNormalizationDivisor, MaxNormalization))
	}

	return result.ErrorOrNil()
}

// Validate checks that both versions are semver and min does not exceed latest.
func (v ApplicationVersionInfo) Validate(platform string) error {
	latest, err := semver.NewVersion(v.Latest)
	if err != nil {
		return fmt.Errorf("app-version.%s.latest %q: %w", platform, v.Latest, err)
	}
	minimum, err := semver.NewVersion(v.Min)
	if err != nil {
		return fmt.Errorf("app-version.%s.min %q: %w", platform, v.Min, err)
	}
	if minimum.GreaterThan(latest) {
		return fmt.Errorf("app-version.%s: min %s is greater than latest %s", platform, minimum, latest)
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
