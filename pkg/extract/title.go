package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinTitleLength is the shortest accepted event title, in characters.
const MinTitleLength = 2

var (
	triggerPattern   = regexp.MustCompile(`(?i)\b(create|schedule|add|make|set\s+up|book|plan)\b`)
	eventNounPattern = regexp.MustCompile(`(?i)\b(event|meeting|appointment|reminder)s?\b`)

	namedPattern  = regexp.MustCompile(`(?i)\b(?:called|named|titled)\s+(.+)$`)
	quotedPrefix  = regexp.MustCompile(`^(?:"([^"]+)"|“([^”]+)”|'([^']+)')`)
	quotedPattern = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)

	// Trigger plus any article and event noun that follows it, or a bare noun.
	titlePrefixPattern = regexp.MustCompile(`(?i)\b(?:(?:create|schedule|add|make|set\s+up|book|plan)\b(?:\s+(?:a|an|the|new|my)\b)*(?:\s+(?:event|meeting|appointment|reminder)s?\b)?|(?:event|meeting|appointment|reminder)s?\b)`)

	// Where a title stops: the first date/time expression.
	dateKeywordPattern = regexp.MustCompile(`(?i)\s+(?:tomorrow|today|tonight|next\s+week|next\s+month|this\s+(?:morning|afternoon|evening|week)|on|at|from|every|(?:monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thur|thu|friday|fri|saturday|sat|sunday|sun)|(?:the\s+)?\d{1,2}(?:st|nd|rd|th))\b`)

	fillerPattern     = regexp.MustCompile(`(?i)\b(?:please|can\s+you|could\s+you|for\s+me|a|an|the)\b`)
	leadingLinkWord   = regexp.MustCompile(`(?i)^(?:for|about|to|on|called|named|titled)\s+`)
	edgePunctuation   = regexp.MustCompile(`^[\s:;,.!?"'“”]+|[\s:;,.!?"'“”]+$`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// HasTrigger reports whether text contains an event-creation verb.
func HasTrigger(text string) bool {
	return triggerPattern.MatchString(text)
}

// HasEventNoun reports whether text mentions an event noun.
func HasEventNoun(text string) bool {
	return eventNounPattern.MatchString(text)
}

// ExtractEventTitle pulls an event title out of a creation command.
// Text without a trigger verb or event noun is not a creation command at all.
// Resolution order:
//  1. called/named/titled X
//  2. the first quoted substring
//  3. the span after the trigger (and its article/noun) up to the first date keyword, fillers removed
func ExtractEventTitle(text string) (string, bool) {
	if !HasTrigger(text) && !HasEventNoun(text) {
		return "", false
	}

	if m := namedPattern.FindStringSubmatch(text); m != nil {
		rest := strings.TrimLeft(m[1], " \t")
		if q := quotedPrefix.FindStringSubmatch(rest); q != nil {
			return acceptQuoted(firstGroup(q))
		}
		return accept(cleanTitle(cutAtDateKeyword(rest)))
	}

	if q := quotedPattern.FindStringSubmatch(text); q != nil {
		return acceptQuoted(firstGroup(q))
	}

	loc := titlePrefixPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	span := cutAtDateKeyword(text[loc[1]:])
	span = fillerPattern.ReplaceAllString(span, " ")
	return accept(cleanTitle(span))
}

func cutAtDateKeyword(s string) string {
	// A leading space is required by the pattern; pad so a keyword at offset 0 still cuts.
	padded := " " + s
	if loc := dateKeywordPattern.FindStringIndex(padded); loc != nil {
		return padded[:loc[0]]
	}
	return s
}

func cleanTitle(s string) string {
	s = whitespacePattern.ReplaceAllString(strings.TrimSpace(s), " ")
	for {
		trimmed := edgePunctuation.ReplaceAllString(s, "")
		trimmed = leadingLinkWord.ReplaceAllString(trimmed, "")
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

func accept(title string) (string, bool) {
	if utf8.RuneCountInString(title) < MinTitleLength {
		return "", false
	}
	return title, true
}

// Quoted titles are returned verbatim.
func acceptQuoted(title string) (string, bool) {
	if strings.TrimSpace(title) == "" {
		return "", false
	}
	return accept(title)
}

func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
