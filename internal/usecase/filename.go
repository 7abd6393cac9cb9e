package usecase

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWordRune   = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]`)
)

// FileName builds {Brand}_{Title}_{Honoree}_Certificate.pdf. Whitespace runs
// become underscores in every token; the honoree token is also stripped of
// anything that is not a letter, digit or underscore. Letters and digits are
// matched in any script, so accented names keep their accents.
func FileName(brand, hackathonTitle, honoree string) string {
	b := underscore(brand)
	t := underscore(hackathonTitle)
	h := nonWordRune.ReplaceAllString(underscore(honoree), "")
	return b + "_" + t + "_" + h + "_Certificate.pdf"
}

func underscore(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), "_")
}
