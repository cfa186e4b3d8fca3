package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// pointPattern matches prose point markers like "(2 points)", "[3 pts]",
// "(1 bonus point)". One optional category word is captured; multi-word
// labels stay unconverted for the author to fix by hand.
var pointPattern = regexp.MustCompile(`(?i)[(\[]\s*(\d+)\s*([A-Za-z]+\s+)?(?:points?|pts?)\s*[)\]]`)

// RewriteAnnotations replaces prose point markers with annotation roles
// and returns the rewritten text plus the number of replacements.
func RewriteAnnotations(s string) (string, int) {
	count := 0
	out := pointPattern.ReplaceAllStringFunc(s, func(m string) string {
		sub := pointPattern.FindStringSubmatch(m)
		count++
		value := sub[1]
		category := strings.ToLower(strings.TrimSpace(sub[2]))
		if category != "" {
			return fmt.Sprintf("{points}`%s %s`", value, category)
		}
		return fmt.Sprintf("{points}`%s`", value)
	})
	return out, count
}
