package survey

import (
	"strings"

	"carevisits/domain/core"
)

// ValidateHeader checks that every field of the tidy table is present among
// the given column names (case-insensitive). Loaders call this before
// decoding rows so that a malformed export fails immediately with the
// offending field named.
func ValidateHeader(columns []string) error {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		seen[strings.ToLower(strings.TrimSpace(c))] = true
	}
	for _, f := range AllFields() {
		if !seen[f.String()] {
			return core.NewMissingFieldError(f.String())
		}
	}
	return nil
}

// ParseYesNo decodes a raw survey cell into a YesNo response. Empty cells
// and the usual NA spellings decode to missing.
func ParseYesNo(raw string) YesNo {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "1", "true":
		return Yes
	case "no", "n", "0", "false":
		return No
	default:
		return ""
	}
}
