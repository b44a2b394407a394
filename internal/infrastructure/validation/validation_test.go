package validation

import (
	"context"
	"math"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/distribution/internal/domain/entities"
)

func validConfig() *entities.ApplicationConfiguration {
	return &entities.ApplicationConfiguration{
		MinRiskScore: 11,
		RiskScoreClasses: entities.RiskScoreClassification{
			RiskClasses: []entities.RiskScoreClass{
				{Label: "LOW", Min: 0, Max: 15, URL: "https://example.org/low"},
				{Label: "HIGH", Min: 15, Max: 72, URL: "https://example.org/high"},
			},
		},
		ExposureConfig: entities.ExposureConfiguration{
			Transmission: []int{1, 2, 3, 4, 5, 6, 7, 8},
			Duration:     []int{1, 1, 1, 2, 3, 4, 5, 6},
			Days:         []int{5, 5, 5, 5, 5, 5, 5, 5},
			Attenuation:  []int{0, 5, 5, 5, 5, 5, 5, 5},
		},
		AttenuationDuration: entities.AttenuationDuration{
			Thresholds:                    entities.AttenuationThresholds{Lower: 50, Upper: 70},
			Weights:                       entities.AttenuationWeights{Low: 1, Mid: 0.5},
			RiskScoreNormalizationDivisor: 25,
		},
		AppVersion: entities.ApplicationVersionConfig{
			IOS:     entities.ApplicationVersionInfo{Latest: "1.5.0", Min: "1.0.0"},
			Android: entities.ApplicationVersionInfo{Latest: "1.5.0", Min: "1.0.0"},
		},
		AppFeatures:        []entities.AppFeature{{Label: "isPlausibleDeniabilityActive", Value: 1}},
		SupportedCountries: []string{"DE", "FR"},
	}
}

func TestSchemaValidator_Valid(t *testing.T) {
	v, err := NewSchemaValidator()
	require.NoError(t, err)

	assert.NoError(t, v.Validate(context.Background(), validConfig()))
}

func TestSchemaValidator_Violations(t *testing.T) {
	v, err := NewSchemaValidator()
	require.NoError(t, err)

	cfg := validConfig()
	cfg.MinRiskScore = -1
	cfg.ExposureConfig.Days[0] = 9
	cfg.SupportedCountries = []string{"germany"}

	err = v.Validate(context.Background(), cfg)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
	assert.Contains(t, err.Error(), "/min-risk-score")
	assert.Contains(t, err.Error(), "/exposure-config/days/0")
	assert.Contains(t, err.Error(), "/supported-countries/0")
}

func TestSchemaValidator_Nil(t *testing.T) {
	v, err := NewSchemaValidator()
	require.NoError(t, err)

	assert.Error(t, v.Validate(context.Background(), nil))
}

func TestNewSchemaValidatorFromBytes_Invalid(t *testing.T) {
	_, err := NewSchemaValidatorFromBytes([]byte(`{"type": 12}`))
	assert.Error(t, err)

	_, err = NewSchemaValidatorFromBytes([]byte(`not json`))
	assert.Error(t, err)
}

func TestRuleValidator(t *testing.T) {
	tests := []struct {
		name    string
		rules   []string
		wantErr string
	}{
		{name: "no rules"},
		{name: "satisfied", rules: []string{"min_risk_score <= 50", `"DE" in supported_countries`}},
		{name: "feature lookup", rules: []string{`features["isPlausibleDeniabilityActive"] == 1`}},
		{name: "weights", rules: []string{"weight_low >= weight_mid && weight_mid >= weight_high"}},
		{name: "not satisfied", rules: []string{"min_risk_score > 50"}, wantErr: `rule "min_risk_score > 50" not satisfied`},
		{name: "bucket count", rules: []string{"len(days) == 7"}, wantErr: "not satisfied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewRuleValidator(tt.rules)
			require.NoError(t, err)
			assert.Equal(t, len(tt.rules), v.Len())

			err = v.Validate(context.Background(), validConfig())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewRuleValidator_CompileErrors(t *testing.T) {
	_, err := NewRuleValidator([]string{"min_risk_score +", "min_risk_score + 1", "unknown_var > 1"})
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 3)
}

func TestComposite_AggregatesAllValidators(t *testing.T) {
	chain, err := New(Options{Schema: true, Rules: []string{"min_risk_score >= 5"}})
	require.NoError(t, err)
	require.Len(t, chain, 3)

	assert.NoError(t, chain.Validate(context.Background(), validConfig()))

	cfg := validConfig()
	cfg.MinRiskScore = -1
	err = chain.Validate(context.Background(), cfg)
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	// schema, domain and rule each report the score once
	assert.Len(t, merr.Errors, 3)
}

func TestComposite_DomainOnly(t *testing.T) {
	chain, err := New(Options{})
	require.NoError(t, err)
	require.Len(t, chain, 1)

	cfg := validConfig()
	cfg.AppVersion.IOS.Min = "2.0.0"
	assert.Error(t, chain.Validate(context.Background(), cfg))
}

func TestComposite_DomainOnly_RejectsNaNWeight(t *testing.T) {
	chain, err := New(Options{})
	require.NoError(t, err)

	cfg := validConfig()
	cfg.AttenuationDuration.Weights.Low = math.NaN()
	err = chain.Validate(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attenuation-duration.weights.low")
}

func TestComposite_CanceledContext(t *testing.T) {
	chain, err := New(Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, chain.Validate(ctx, validConfig()), context.Canceled)
}
