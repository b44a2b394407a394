package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/distribution/internal/application/dto"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output will be pretty-printed with indentation.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// Format writes the build report as JSON.
func (f *JSONFormatter) Format(report *dto.BuildReport) error {
	return f.encode(report)
}

// FormatValidation writes the validation verdict as JSON.
func (f *JSONFormatter) FormatValidation(resp *dto.ValidateResponse) error {
	return f.encode(resp)
}

func (f *JSONFormatter) encode(v any) error {
	enc := json.NewEncoder(f.writer)
	if f.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
