// backend/src/security/validation/sanitizers.go
package validation

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictHTMLPolicy = bluemonday.StrictPolicy()

// SanitizeFreeText strips all HTML and non-printable characters from a
// user-supplied free-text field (notes, lessons, emotions). Imported CSVs
// come from arbitrary files, so anything rendered back to the browser goes
// through here first.
func SanitizeFreeText(s string) string {
	return strings.TrimSpace(StripUnprintable(strictHTMLPolicy.Sanitize(s)))
}

// SanitizeForFormulaInjection prepends a single quote if the string starts
// with a formula character, so spreadsheet software treats it as text.
func SanitizeForFormulaInjection(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 {
		firstChar := rune(trimmed[0])
		if firstChar == '=' || firstChar == '+' || firstChar == '@' || firstChar == '\t' || firstChar == '\r' {
			return "'" + s
		}
	}
	return s
}

// StripUnprintable removes non-printable characters, allowing common
// whitespace like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}
