package validators

import (
	"strconv"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/lawscheduling/lawscheduling-backend/pkg/errors"
)

// SanitizeString trims surrounding whitespace.
func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}

// SanitizeFields trims every string value in fields. A value longer than
// maxLen characters after trimming is rejected, never shortened; every
// offending key is reported in the error details.
func SanitizeFields(fields map[string]any, maxLen int) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	oversize := map[string]string{}
	for key, value := range fields {
		s, ok := value.(string)
		if !ok {
			out[key] = value
			continue
		}
		s = SanitizeString(s)
		if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
			oversize[key] = "must be at most " + strconv.Itoa(maxLen) + " characters"
			continue
		}
		out[key] = s
	}
	if len(oversize) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(oversize)
	}
	return out, nil
}
