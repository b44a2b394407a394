// Package dto contains data transfer objects for application layer use cases.
package dto

import (
	"time"

	"github.com/reglet-dev/distribution/internal/domain/values"
)

// Layout names the directories and files of the app configuration tree.
type Layout struct {
	Prefix        []string
	Configuration string
	Country       string
	Index         string
	Artifact      string
}

// DefaultLayout returns configuration/country/{index,<CC>/app_config}.
func DefaultLayout() Layout {
	return Layout{
		Configuration: "configuration",
		Country:       "country",
		Index:         "index",
		Artifact:      "app_config",
	}
}

// AssembleRequest encapsulates all inputs needed for one build.
type AssembleRequest struct {
	Layout    Layout
	Countries []values.CountryCode
	DryRun    bool
}

// EntryReport is the outcome of one key.
type EntryReport struct {
	Key     string            `json:"key" yaml:"key"`
	State   values.EntryState `json:"state" yaml:"state"`
	Source  string            `json:"source" yaml:"source"`
	Reason  string            `json:"reason,omitempty" yaml:"reason,omitempty"`
	Details []string          `json:"details,omitempty" yaml:"details,omitempty"`
}

// BuildReport summarizes a finished build.
type BuildReport struct {
	BuildID   values.BuildID `json:"build_id" yaml:"build_id"`
	StartTime time.Time      `json:"start_time" yaml:"start_time"`
	Output    string         `json:"output" yaml:"output"`
	Checksum  string         `json:"checksum_algorithm" yaml:"checksum_algorithm"`
	Entries   []EntryReport  `json:"entries" yaml:"entries"`
	Files     []string       `json:"files" yaml:"files"`
	Duration  time.Duration  `json:"duration" yaml:"duration"`
	DryRun    bool           `json:"dry_run" yaml:"dry_run"`
}

// ReadyKeys returns the keys that were emitted, in report order.
func (r *BuildReport) ReadyKeys() []string {
	var keys []string
	for _, e := range r.Entries {
		if e.State.IsReady() {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

// FailedCount returns the number of dropped keys.
func (r *BuildReport) FailedCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.State.IsFailure() {
			n++
		}
	}
	return n
}

// ValidateRequest asks for a single config file to be checked.
type ValidateRequest struct {
	Path string
}

// ValidateResponse is the verdict for one config file.
type ValidateResponse struct {
	Path    string            `json:"path" yaml:"path"`
	State   values.EntryState `json:"state" yaml:"state"`
	Reason  string            `json:"reason,omitempty" yaml:"reason,omitempty"`
	Details []string          `json:"details,omitempty" yaml:"details,omitempty"`
}
