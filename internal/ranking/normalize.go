package ranking

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	unorm "golang.org/x/text/unicode/norm"
)

// NormalizeKey folds text into a stable identity: NFKC, case folded, control
// characters removed, whitespace collapsed.
func NormalizeKey(text string) string {
	normed := unorm.NFKC.String(text)
	normed = cases.Fold().String(normed)
	normed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, normed)
	return strings.Join(strings.Fields(normed), " ")
}
