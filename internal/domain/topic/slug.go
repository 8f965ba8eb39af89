package topic

import (
	"regexp"
	"strings"
	"time"
)

const maxSlugRunes = 40

// slugSpace is Unicode whitespace plus the ASCII separators U+001C..U+001F.
// \s alone is ASCII only and misses ideographic and no-break spaces.
const slugSpace = `\s\x{0b}\p{Z}\x{1c}-\x{1f}\x{85}`

var (
	slugStrip   = regexp.MustCompile(`[^\p{L}\p{N}_` + slugSpace + `-]`)
	slugSpaces  = regexp.MustCompile(`[` + slugSpace + `_]+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// Slugify turns a title into a lowercase, hyphenated identifier fragment of at
// most 40 runes. Letters and digits of any script are kept.
func Slugify(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	if runes := []rune(s); len(runes) > maxSlugRunes {
		s = string(runes[:maxSlugRunes])
	}
	return strings.Trim(s, "-")
}

// NewID builds a topic identifier from the creation time and title. IDs sort
// chronologically because the timestamp comes first.
func NewID(now time.Time, title string) string {
	ts := now.Format(IDTimeLayout)
	if slug := Slugify(title); slug != "" {
		return ts + "-" + slug
	}
	return ts
}
