// Package output renders CLI results as tables, listing blocks, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Format represents the output format type.
type Format string

const (
	// FormatTable outputs data in a formatted table.
	FormatTable Format = "table"
	// FormatJSON outputs data as JSON.
	FormatJSON Format = "json"
	// FormatYAML outputs data as YAML.
	FormatYAML Format = "yaml"
)

// ParseFormat parses a string into a Format, returning an error if invalid.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

const (
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiReset  = "\033[0m"
)

// Printer writes command results in one format. Status lines are coloured
// only when colour is enabled.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter creates a new Printer with the given options.
func NewPrinter(out io.Writer, format Format, color bool) *Printer {
	return &Printer{
		out:    out,
		format: format,
		color:  color,
	}
}

// DefaultPrinter writes tables to stdout, with colour when stdout is a
// terminal.
func DefaultPrinter() *Printer {
	return NewPrinter(os.Stdout, FormatTable, IsTerminal(os.Stdout))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Format returns the printer's output format.
func (p *Printer) Format() Format {
	return p.format
}

// Writer returns the printer's output writer.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// ColorEnabled returns whether color output is enabled.
func (p *Printer) ColorEnabled() bool {
	return p.color
}

// Print outputs data in the configured format. In table format data is
// rendered through ListingRenderer or TableRenderer when it implements
// one, and as JSON otherwise.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatTable:
		switch r := data.(type) {
		case ListingRenderer:
			return PrintListing(p.out, r.ListingOwner(), r.ListingEntries())
		case TableRenderer:
			return PrintTable(p.out, r)
		}
		return PrintJSON(p.out, data)
	case FormatJSON, FormatYAML:
		return Encode(p.out, p.format, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Structured reports whether the printer emits JSON or YAML. Human status
// lines are suppressed in that case so the output stays parseable.
func (p *Printer) Structured() bool {
	return p.format == FormatJSON || p.format == FormatYAML
}

// Println prints a message followed by a newline.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

// Printf prints a formatted message.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Success prints a success message.
func (p *Printer) Success(msg string) { p.colored(ansiGreen, msg) }

// Error prints an error message.
func (p *Printer) Error(msg string) { p.colored(ansiRed, msg) }

// Warning prints a warning message.
func (p *Printer) Warning(msg string) { p.colored(ansiYellow, msg) }

func (p *Printer) colored(code, msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "%s%s%s\n", code, msg, ansiReset)
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}
