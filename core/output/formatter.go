// Package output renders cost runs in human and machine readable formats.
package output

import (
	"io"

	"github.com/shopspring/decimal"

	"plancost/core/costs"
	"plancost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatTable is a human-readable table
	FormatTable Format = "table"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the cost run to w
	Render(w io.Writer, run costs.Run) error
}

// NewFormatter returns the formatter for a format name
func NewFormatter(format string) (Formatter, error) {
	switch Format(format) {
	case FormatTable, "":
		return TableFormatter{}, nil
	case FormatJSON:
		return JSONFormatter{}, nil
	default:
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q", format)
	}
}

// displayPlaces is the decimal precision of rendered amounts
const displayPlaces = 6

// displayAmount rounds for display, half up to six decimal places.
// Internal cost values stay unrounded.
func displayAmount(amount decimal.Decimal) string {
	return amount.Round(displayPlaces).String()
}
