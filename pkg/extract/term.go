package extract

import (
	"regexp"
	"strings"
)

// MaxTermLength caps a lookup term, in characters.
const MaxTermLength = 100

var (
	definitionTrigger = regexp.MustCompile(`(?i)\bdefine\b|\bdefinition\s+of\b|\bmeaning\s+of\b|\bwhat\s+is\b|\bwhat's\b|\bwhats\b|\bwhat\s+does\b|\bexplain\b|\btell\s+me\s+about\b|\bwho\s+(?:is|was)\b|\bgive\s+me\s+information\s+about\b`)

	// Single quotes count only at word edges so "what's" is not a quote.
	quotedTermPattern = regexp.MustCompile(`"(.+?)"|“(.+?)”|(?:^|\s)'([^']+)'(?:$|[\s?.!,])`)

	definitionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:define|definition\s+of|meaning\s+of|what\s+is|what's|whats|explain)\s+(?:the\s+word\s+)?(.+?)[?.!]?$`),
		regexp.MustCompile(`(?i)what\s+does\s+(.+?)\s+mean\??$`),
		regexp.MustCompile(`(?i)(?:tell\s+me\s+about|who\s+is|who\s+was|give\s+me\s+information\s+about)\s+(.+?)[?.!]?$`),
	}

	sentencePunctuation = regexp.MustCompile(`[?.!]`)
	termEdgeLeading     = regexp.MustCompile(`^[:;"'\s]+`)
	termEdgeTrailing    = regexp.MustCompile(`[\s:;"'.,!?]+$`)
)

// IsDefinitionQuery reports whether text asks to define or describe something.
func IsDefinitionQuery(text string) bool {
	return definitionTrigger.MatchString(text)
}

// ExtractDefinitionTerm finds the subject of a definition query.
// A quoted term wins; then the define/what is/tell me about family; otherwise a short
// utterance is taken whole and a long one contributes its last three words.
func ExtractDefinitionTerm(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", false
	}

	if m := quotedTermPattern.FindStringSubmatch(t); m != nil {
		return sanitizeTerm(firstGroup(m))
	}

	for _, p := range definitionPatterns {
		if m := p.FindStringSubmatch(t); m != nil && m[1] != "" {
			return sanitizeTerm(m[1])
		}
	}

	words := strings.Fields(sentencePunctuation.ReplaceAllString(t, ""))
	if len(words) <= 3 {
		return sanitizeTerm(t)
	}
	return sanitizeTerm(strings.Join(words[len(words)-3:], " "))
}

func sanitizeTerm(s string) (string, bool) {
	term := strings.TrimSpace(s)
	term = termEdgeLeading.ReplaceAllString(term, "")
	term = termEdgeTrailing.ReplaceAllString(term, "")
	if runes := []rune(term); len(runes) > MaxTermLength {
		term = string(runes[:MaxTermLength])
	}
	return term, term != ""
}
