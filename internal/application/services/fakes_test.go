package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/reglet-dev/distribution/internal/application/ports"
	"github.com/reglet-dev/distribution/internal/domain/entities"
	"github.com/reglet-dev/distribution/internal/domain/structure"
)

// mapSource resolves keys through a map, falling back to "<key>.yaml".
type mapSource map[string]string

func (s mapSource) ParametersFile(key string) string {
	if p, ok := s[key]; ok {
		return p
	}
	return key + ".yaml"
}

// fakeLoader serves configs by path; unknown paths fail like a missing file.
type fakeLoader struct {
	mu      sync.Mutex
	configs map[string]AppConfig
	calls   int
}

func (l *fakeLoader) Load(_ context.Context, path string) (AppConfig, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	cfg, ok := l.configs[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return cfg, nil
}

// domainValidator applies the entity rules.
type domainValidator struct{}

func (domainValidator) Validate(_ context.Context, cfg AppConfig) error {
	return cfg.Validate()
}

// textEncoder renders the min risk score; deterministic and readable in assertions.
type textEncoder struct {
	fail bool
}

func (e textEncoder) Encode(cfg AppConfig) ([]byte, error) {
	if e.fail {
		return nil, errors.New("encoder broken")
	}
	return []byte(fmt.Sprintf("min-risk-score=%d", cfg.MinRiskScore)), nil
}

type sha256Digester struct{}

func (sha256Digester) Algorithm() string { return "sha256" }

func (sha256Digester) Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return []byte(hex.EncodeToString(sum[:]))
}

// memoryTarget is an in-memory OutputTarget.
type memoryTarget struct {
	dirs   map[string]bool
	files  map[string][]byte
	failOn string
}

func newMemoryTarget() *memoryTarget {
	return &memoryTarget{dirs: make(map[string]bool), files: make(map[string][]byte)}
}

func (m *memoryTarget) MakeDir(path string) error {
	if m.failOn != "" && path == m.failOn {
		return fmt.Errorf("mkdir %s: %w", path, os.ErrPermission)
	}
	m.dirs[path] = true
	return nil
}

func (m *memoryTarget) WriteFile(path string, data []byte) error {
	if m.failOn != "" && path == m.failOn {
		return fmt.Errorf("write %s: %w", path, os.ErrPermission)
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

func (m *memoryTarget) Root() string { return "memory://" }

func (m *memoryTarget) Written() []string {
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type memoryFactory struct {
	target  *memoryTarget
	openErr error
}

func (f *memoryFactory) Open(context.Context, bool) (ports.OutputTarget, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.target, nil
}

func validConfig() *entities.ApplicationConfiguration {
	return &entities.ApplicationConfiguration{
		MinRiskScore: 11,
		RiskScoreClasses: entities.RiskScoreClassification{
			RiskClasses: []entities.RiskScoreClass{
				{Label: "LOW", Min: 0, Max: 15, URL: "https://www.coronawarn.app"},
				{Label: "HIGH", Min: 15, Max: 72, URL: "https://www.coronawarn.app"},
			},
		},
		ExposureConfig: entities.ExposureConfiguration{
			Transmission: []int{1, 2, 3, 4, 5, 6, 7, 8},
			Duration:     []int{1, 2, 3, 4, 5, 6, 7, 8},
			Days:         []int{1, 2, 3, 4, 5, 6, 7, 8},
			Attenuation:  []int{1, 2, 3, 4, 5, 6, 7, 8},
		},
		AttenuationDuration: entities.AttenuationDuration{
			Thresholds:                    entities.AttenuationThresholds{Lower: 50, Upper: 70},
			Weights:                       entities.AttenuationWeights{Low: 1, Mid: 0.5},
			RiskScoreNormalizationDivisor: 25,
		},
		AppVersion: entities.ApplicationVersionConfig{
			IOS:     entities.ApplicationVersionInfo{Latest: "1.0.0", Min: "1.0.0"},
			Android: entities.ApplicationVersionInfo{Latest: "1.0.0", Min: "1.0.0"},
		},
	}
}

func negativeConfig() *entities.ApplicationConfiguration {
	cfg := validConfig()
	cfg.MinRiskScore = -1
	return cfg
}

// sidecarPairs splits written files into artifacts and the artifacts their sidecars point at.
func sidecarPairs(files []string) (artifacts, sidecars []string) {
	for _, f := range files {
		if strings.HasSuffix(f, structure.DefaultChecksumSuffix) {
			sidecars = append(sidecars, strings.TrimSuffix(f, structure.DefaultChecksumSuffix))
		} else {
			artifacts = append(artifacts, f)
		}
	}
	return artifacts, sidecars
}
