package cleaner

import (
	"regexp"
	"strings"
)

var (
	zeroWidthRe  = regexp.MustCompile(`[\x{200B}-\x{200F}\x{FEFF}]`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// Clean normalises extracted document text before chunking: NUL bytes
// become spaces, zero-width characters and byte order marks are removed and
// every whitespace run collapses to a single space.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	text = zeroWidthRe.ReplaceAllString(text, "")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
