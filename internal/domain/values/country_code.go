package values

import (
	"fmt"
	"regexp"
	"strings"
)

var countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// CountryCode is an ISO 3166-1 alpha-2 code such as "DE".
// Input is trimmed and upper-cased.
type CountryCode struct {
	value string
}

// NewCountryCode creates a new CountryCode with validation
func NewCountryCode(code string) (CountryCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !countryCodePattern.MatchString(code) {
		return CountryCode{}, fmt.Errorf("invalid country code %q: expected two letters", code)
	}
	return CountryCode{value: code}, nil
}

// MustNewCountryCode creates a CountryCode or panics (for tests/constants)
func MustNewCountryCode(code string) CountryCode {
	c, err := NewCountryCode(code)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCountryCodes converts and deduplicates a list of codes, keeping order.
func ParseCountryCodes(codes []string) ([]CountryCode, error) {
	seen := make(map[string]bool, len(codes))
	out := make([]CountryCode, 0, len(codes))
	for _, raw := range codes {
		code, err := NewCountryCode(raw)
		if err != nil {
			return nil, err
		}
		if seen[code.value] {
			continue
		}
		seen[code.value] = true
		out = append(out, code)
	}
	return out, nil
}

// String returns the string representation
func (c CountryCode) String() string {
	return c.value
}

// IsEmpty returns true if this is the zero value
func (c CountryCode) IsEmpty() bool {
	return c.value == ""
}

// MarshalText implements encoding.TextMarshaler
func (c CountryCode) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *CountryCode) UnmarshalText(data []byte) error {
	code, err := NewCountryCode(string(data))
	if err != nil {
		return err
	}
	*c = code
	return nil
}
