package output

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/distribution/internal/application/dto"
)

// YAMLFormatter formats reports as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the build report as YAML.
func (f *YAMLFormatter) Format(report *dto.BuildReport) error {
	return f.encode(report)
}

// FormatValidation writes the validation verdict as YAML.
func (f *YAMLFormatter) FormatValidation(resp *dto.ValidateResponse) error {
	return f.encode(resp)
}

func (f *YAMLFormatter) encode(v any) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
