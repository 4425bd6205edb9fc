// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/iwvelando/home-affordability/pkg/constants"
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

// NormalizeZIP strips every non-digit from value and checks that exactly
// five digits remain.
func NormalizeZIP(value string) (string, error) {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	zip := b.String()
	if len(zip) != constants.ZIPCodeLength {
		return "", fmt.Errorf("%w: got %q", ErrInvalidZIP, value)
	}
	return zip, nil
}
