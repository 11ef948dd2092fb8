package dataset

import (
	"fmt"
	"strings"
)

// Format identifies a supported input encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
)

// suffixes is checked in order; matching is case-sensitive.
var suffixes = []struct {
	suffix string
	format Format
}{
	{".csv", FormatCSV},
	{".xlsx", FormatExcel},
	{".xls", FormatExcel},
	{".json", FormatJSON},
}

// SupportedExtensions lists the accepted file extensions without the dot.
var SupportedExtensions = []string{"csv", "xlsx", "xls", "json"}

// DetectFormat maps a declared file name to its format by suffix.
func DetectFormat(name string) (Format, error) {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s.suffix) {
			return s.format, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected .csv, .xls, .xlsx or .json)", ErrUnsupportedFormat, name)
}
