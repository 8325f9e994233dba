package intent

import (
	"regexp"
	"strings"
	"unicode"
)

// NameResult reports what ExtractName found.
type NameResult struct {
	// Name is the candidate, empty when nothing name-like was said.
	Name string
	// Valid is false when a candidate was found but looks like a stop word
	// or has an implausible length.
	Valid bool
}

// Found reports whether a candidate was extracted at all.
func (r NameResult) Found() bool { return r.Name != "" }

var namePattern = regexp.MustCompile(`(?i)(?:my name is|i'm|i am|call me)\s+([a-zA-Z][a-zA-Z\-']{1,19})(?:\s+([a-zA-Z][a-zA-Z\-']{1,19}))?`)

var nonNames = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`in at here there gallery the a an museum visitor i me you we us on to
		for and but or with from of is am are my your call it this that yes no thanks thank hi hello hey`) {
		nonNames[w] = struct{}{}
	}
}

// ExtractName looks for the visitor's name. An explicit introduction ("my
// name is", "I'm", "call me") always counts; when askedName is set a bare one
// or two word answer counts too.
func ExtractName(text string, askedName bool) NameResult {
	var candidate string
	if m := namePattern.FindStringSubmatch(text); m != nil {
		candidate = m[1]
		if m[2] != "" {
			candidate += " " + m[2]
		}
	} else if askedName {
		words := strings.Fields(text)
		if len(words) >= 1 && len(words) <= 2 && allPlainNames(words) {
			for i, w := range words {
				words[i] = capitalize(w)
			}
			candidate = strings.Join(words, " ")
		}
	}

	if candidate == "" {
		return NameResult{}
	}

	valid := len(candidate) >= 2 && len(candidate) <= 20
	for _, w := range strings.Fields(candidate) {
		if isNonName(w) {
			valid = false
		}
	}
	return NameResult{Name: candidate, Valid: valid}
}

func allPlainNames(words []string) bool {
	for _, w := range words {
		if isNonName(w) {
			return false
		}
		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

func isNonName(word string) bool {
	_, ok := nonNames[strings.ToLower(word)]
	return ok
}

func capitalize(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
