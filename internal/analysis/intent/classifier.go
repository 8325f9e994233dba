package intent

import "strings"

// Label names what the visitor is asking for.
type Label string

const (
	Unknown    Label = "unknown"
	Greeting   Label = "greeting"
	Stop       Label = "stop"
	Bathroom   Label = "bathroom"
	Directions Label = "directions"
	Exhibition Label = "exhibition"
	Menu       Label = "menu"
	Event      Label = "event"
)

// exactPhrases must match the whole trimmed message.
var exactPhrases = map[Label][]string{
	Greeting: {"hello", "hi", "hey"},
	Stop:     {"stop", "leave me alone"},
}

// keywordBuckets match anywhere in the message.
var keywordBuckets = map[Label][]string{
	Bathroom:   {"bathroom", "restroom", "toilet", "washroom"},
	Directions: {"how do i get", "directions", "address", "where is canyon", "get to canyon", "find canyon", "location"},
	Exhibition: {"exhibition", "exhibit", "what's on", "gallery", "show me art"},
	Menu:       {"menu", "food", "coffee", "latte", "eat", "drink", "cafe", "café"},
	Event:      {"event", "events", "schedule", "happening", "talk", "demo"},
}

// priority fixes the order buckets are tried in; the first hit wins.
var priority = []Label{Greeting, Stop, Bathroom, Directions, Exhibition, Menu, Event}

// Classify maps a visitor message onto a Label.
func Classify(text string) Label {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Unknown
	}

	for _, label := range priority {
		for _, phrase := range exactPhrases[label] {
			if normalized == phrase {
				return label
			}
		}
		for _, word := range keywordBuckets[label] {
			if strings.Contains(normalized, word) {
				return label
			}
		}
	}
	return Unknown
}
