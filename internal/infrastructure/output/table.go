// Package output renders build reports for the terminal and for machines.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/reglet-dev/distribution/internal/application/dto"
	"github.com/reglet-dev/distribution/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// TableFormatter formats reports as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true,
	}
}

func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

func (f *TableFormatter) rule() string {
	return f.colorize(strings.Repeat("─", 80), colorGray)
}

// Format writes the build report as a table.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) Format(report *dto.BuildReport) error {
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "Build: %s\n", f.colorize(report.BuildID.String(), colorBold))
	fmt.Fprintf(f.writer, "Started: %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))
	output := report.Output
	if report.DryRun {
		output += f.colorize(" (dry run)", colorYellow)
	}
	fmt.Fprintf(f.writer, "Output: %s\n", output)
	fmt.Fprintf(f.writer, "Checksum: %s\n", report.Checksum)
	fmt.Fprintln(f.writer)

	if len(report.Entries) == 0 {
		fmt.Fprintln(f.writer, "No keys configured.")
	} else {
		fmt.Fprintln(f.writer, f.colorize("Entries:", colorBold))
		fmt.Fprintln(f.writer, f.rule())
		for _, e := range report.Entries {
			f.formatEntry(e)
		}
	}

	fmt.Fprintln(f.writer, f.colorize("Files:", colorBold))
	fmt.Fprintln(f.writer, f.rule())
	for _, file := range report.Files {
		fmt.Fprintf(f.writer, "  %s\n", f.colorize(file, colorCyan))
	}
	fmt.Fprintln(f.writer, f.rule())

	ready := len(report.ReadyKeys())
	fmt.Fprintf(f.writer, "Keys: %d total\n", len(report.Entries))
	fmt.Fprintf(f.writer, "  %s Ready:    %d\n", f.colorize("✓", colorGreen), ready)
	fmt.Fprintf(f.writer, "  %s Dropped:  %d\n", f.colorize("✗", colorRed), report.FailedCount())
	fmt.Fprintf(f.writer, "Files: %d written\n", len(report.Files))
	fmt.Fprintln(f.writer, f.rule())
	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatEntry(e dto.EntryReport) {
	symbol, color := f.getStateInfo(e.State)
	fmt.Fprintf(f.writer, "%s %s: %s\n", f.colorize(symbol, color), f.colorize(e.Key, color), e.State)
	if e.Source != "" {
		fmt.Fprintf(f.writer, "  Source: %s\n", e.Source)
	}
	f.formatReason(e.Reason, e.Details)
}

// FormatValidation writes the verdict on a single config file.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatValidation(resp *dto.ValidateResponse) error {
	symbol, color := f.getStateInfo(resp.State)
	fmt.Fprintf(f.writer, "%s %s: %s\n", f.colorize(symbol, color), resp.Path, f.colorize(string(resp.State), color))
	f.formatReason(resp.Reason, resp.Details)
	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatReason(reason string, details []string) {
	if len(details) > 1 {
		fmt.Fprintf(f.writer, "  %s:\n", f.colorize("Violations", colorRed))
		for _, d := range details {
			fmt.Fprintf(f.writer, "    - %s\n", d)
		}
		return
	}
	if reason != "" {
		fmt.Fprintf(f.writer, "  %s: %s\n", f.colorize("Reason", colorRed), reason)
	}
}

func (f *TableFormatter) getStateInfo(state values.EntryState) (string, string) {
	switch state {
	case values.EntryReady:
		return "✓", colorGreen
	case values.EntryValidationFailed:
		return "✗", colorRed
	case values.EntryLoadFailed:
		return "⚠", colorYellow
	default:
		return "?", colorReset
	}
}
