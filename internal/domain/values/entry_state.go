package values

import "fmt"

// EntryState is the outcome of loading and validating one keyed entry.
type EntryState string

const (
	// EntryUnloaded means no load was attempted yet
	EntryUnloaded EntryState = "unloaded"
	// EntryLoadFailed means the source was missing, unreadable or unparsable
	EntryLoadFailed EntryState = "load_failed"
	// EntryValidationFailed means the parsed content broke a rule
	EntryValidationFailed EntryState = "validation_failed"
	// EntryReady means the entry is emitted
	EntryReady EntryState = "ready"
)

// IsReady returns true if the entry contributes output
func (s EntryState) IsReady() bool {
	return s == EntryReady
}

// IsFailure returns true if the entry was dropped
func (s EntryState) IsFailure() bool {
	return s == EntryLoadFailed || s == EntryValidationFailed
}

// Validate returns an error if the state value is invalid
func (s EntryState) Validate() error {
	switch s {
	case EntryUnloaded, EntryLoadFailed, EntryValidationFailed, EntryReady:
		return nil
	default:
		return fmt.Errorf("invalid entry state: %s", s)
	}
}

// String returns the string representation
func (s EntryState) String() string {
	return string(s)
}
