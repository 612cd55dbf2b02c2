// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iwvelando/dcf-valuation/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.=-]{0,14}$`)

// NormalizeTicker upper-cases and trims a ticker symbol and checks that it
// only contains characters used by exchange symbols.
func NormalizeTicker(ticker string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))
	if normalized == "" {
		return "", fmt.Errorf("ticker is required")
	}
	if !tickerPattern.MatchString(normalized) {
		return "", fmt.Errorf("invalid ticker %q", ticker)
	}
	return normalized, nil
}
