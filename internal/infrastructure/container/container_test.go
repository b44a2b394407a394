package container

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/distribution/internal/application/dto"
	"github.com/reglet-dev/distribution/internal/domain/values"
	"github.com/reglet-dev/distribution/internal/infrastructure/config"
)

func testConfig(t *testing.T, parameters string) (config.ServiceConfig, string) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "out")
	cfg := config.DefaultServiceConfig()
	cfg.Paths.Output = out
	cfg.AppConfig.ParametersFile = parameters
	cfg.BaseDir = "testdata"
	return cfg, out
}

func assemble(t *testing.T, cfg config.ServiceConfig, dryRun bool) *dto.BuildReport {
	t.Helper()
	c, err := New(Options{Config: cfg})
	require.NoError(t, err)

	report, err := c.AssembleUseCase().Execute(context.Background(), c.AssembleRequest(dryRun))
	require.NoError(t, err)
	return report
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return files
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestAssemble_ValidConfig(t *testing.T) {
	cfg, out := testConfig(t, "app-config.yaml")

	report := assemble(t, cfg, false)

	expected := []string{
		"configuration/country/DE/app_config",
		"configuration/country/DE/app_config.checksum",
		"configuration/country/index",
		"configuration/country/index.checksum",
	}
	assert.Equal(t, expected, listFiles(t, out))
	assert.Equal(t, expected, report.Files)
	assert.Equal(t, out, report.Output)

	index, err := os.ReadFile(filepath.Join(out, "configuration", "country", "index"))
	require.NoError(t, err)
	assert.JSONEq(t, `["DE"]`, string(index))

	artifact, err := os.ReadFile(filepath.Join(out, "configuration", "country", "DE", "app_config"))
	require.NoError(t, err)
	sidecar, err := os.ReadFile(filepath.Join(out, "configuration", "country", "DE", "app_config.checksum"))
	require.NoError(t, err)
	assert.Equal(t, sha256Hex(artifact), string(sidecar))

	var decoded map[string]any
	require.NoError(t, cbor.Unmarshal(artifact, &decoded))
	assert.EqualValues(t, 11, decoded["min-risk-score"])
}

func TestAssemble_ValidationFails(t *testing.T) {
	cfg, out := testConfig(t, "app-config_mrs_negative.yaml")

	report := assemble(t, cfg, false)

	assert.Equal(t, []string{
		"configuration/country/index",
		"configuration/country/index.checksum",
	}, listFiles(t, out))
	require.Len(t, report.Entries, 1)
	assert.Equal(t, values.EntryValidationFailed, report.Entries[0].State)
	assert.NoDirExists(t, filepath.Join(out, "configuration", "country", "DE"))
}

func TestAssemble_UnableToLoad(t *testing.T) {
	cfg, out := testConfig(t, "invalidPath")

	report := assemble(t, cfg, false)

	assert.Equal(t, []string{
		"configuration/country/index",
		"configuration/country/index.checksum",
	}, listFiles(t, out))
	require.Len(t, report.Entries, 1)
	assert.Equal(t, values.EntryLoadFailed, report.Entries[0].State)
}

func TestAssemble_MixedCountriesAndBlake3(t *testing.T) {
	cfg, out := testConfig(t, "app-config.yaml")
	cfg.AppConfig.Countries = []string{"FR", "DE", "IT"}
	cfg.AppConfig.CountryFiles = map[string]string{"IT": "app-config_mrs_negative.yaml"}
	cfg.Checksum.Algorithm = "blake3"
	cfg.Structure.Prefix = []string{"version", "v1"}

	report := assemble(t, cfg, false)

	assert.Equal(t, "blake3", report.Checksum)
	index, err := os.ReadFile(filepath.Join(out, "version", "v1", "configuration", "country", "index"))
	require.NoError(t, err)
	assert.JSONEq(t, `["DE","FR"]`, string(index))
	assert.NoDirExists(t, filepath.Join(out, "version", "v1", "configuration", "country", "IT"))
	assert.Len(t, listFiles(t, out), 6)
}

func TestAssemble_ChecksumsStableAcrossRuns(t *testing.T) {
	cfg, out := testConfig(t, "app-config.yaml")

	assemble(t, cfg, false)
	first := readAll(t, out)
	assemble(t, cfg, false)
	second := readAll(t, out)

	assert.Equal(t, first, second)
}

func TestAssemble_RecreateRemovesStaleOutput(t *testing.T) {
	cfg, out := testConfig(t, "app-config.yaml")
	assemble(t, cfg, false)

	cfg.AppConfig.ParametersFile = "app-config_mrs_negative.yaml"
	assemble(t, cfg, false)

	assert.NoDirExists(t, filepath.Join(out, "configuration", "country", "DE"))
}

func TestAssemble_DryRun(t *testing.T) {
	cfg, out := testConfig(t, "app-config.yaml")

	report := assemble(t, cfg, true)

	assert.True(t, report.DryRun)
	assert.Len(t, report.Files, 4)
	assert.NoDirExists(t, out)
}

func TestAssemble_OutputUnwritable(t *testing.T) {
	cfg, out := testConfig(t, "app-config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
	require.NoError(t, os.WriteFile(out, []byte("not a directory"), 0o600))

	c, err := New(Options{Config: cfg})
	require.NoError(t, err)

	_, err = c.AssembleUseCase().Execute(context.Background(), c.AssembleRequest(false))
	assert.Error(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg, _ := testConfig(t, "app-config.yaml")
	cfg.Checksum.Algorithm = "md5"
	_, err := New(Options{Config: cfg})
	assert.Error(t, err)

	cfg, _ = testConfig(t, "app-config.yaml")
	cfg.Validation.Rules = []string{"min_risk_score +"}
	_, err = New(Options{Config: cfg})
	assert.Error(t, err)

	cfg, _ = testConfig(t, "app-config.yaml")
	cfg.AppConfig.Countries = []string{"Germany"}
	_, err = New(Options{Config: cfg})
	assert.Error(t, err)
}

func TestValidateConfigUseCase(t *testing.T) {
	cfg, _ := testConfig(t, "app-config.yaml")
	c, err := New(Options{Config: cfg})
	require.NoError(t, err)

	resp, err := c.ValidateConfigUseCase().Execute(context.Background(),
		dto.ValidateRequest{Path: filepath.Join("testdata", "app-config_mrs_negative.yaml")})
	require.NoError(t, err)
	assert.Equal(t, values.EntryValidationFailed, resp.State)
	assert.NotEmpty(t, resp.Details)
}

func readAll(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, f := range listFiles(t, root) {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f)))
		require.NoError(t, err)
		out[f] = string(data)
	}
	return out
}
