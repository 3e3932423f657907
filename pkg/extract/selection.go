package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	cancelPattern  = regexp.MustCompile(`(?i)^(?:cancel|never\s+mind|nevermind)$`)
	numericPattern = regexp.MustCompile(`^\d+$`)
	ordinalPattern = regexp.MustCompile(`(?i)\b(first|second|third|fourth|fifth)\b`)
)

var ordinals = map[string]int{
	"first":  1,
	"second": 2,
	"third":  3,
	"fourth": 4,
	"fifth":  5,
}

// IsCancel reports whether the whole reply is a cancel word.
func IsCancel(text string) bool {
	return cancelPattern.MatchString(strings.TrimSpace(text))
}

// ParseNumber parses a reply made only of digits. The second result is false for anything else.
func ParseNumber(text string) (int, bool) {
	t := strings.TrimSpace(text)
	if !numericPattern.MatchString(t) {
		return 0, false
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseOrdinal finds an ordinal word (first..fifth) anywhere in the reply.
func ParseOrdinal(text string) (int, bool) {
	m := ordinalPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return ordinals[strings.ToLower(m[1])], true
}
