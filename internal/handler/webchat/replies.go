package webchat

import (
	"fmt"
	"math/rand/v2"

	"github.com/zhouzirui/canyon-webchat/internal/analysis/intent"
	"github.com/zhouzirui/canyon-webchat/internal/model/venue"
)

const (
	AskNameReply      = "Hi! What should I call you? 😊"
	BadNameReply      = "Sorry, I didn't catch your name. What should I call you?"
	StepBackReply     = "Understood. I’ll step back. If you need me, just text again. 🌙"
	NoAnswerReply     = "Sorry, I couldn't get a response from the AI right now."
	InternalReply     = "Sorry, something went wrong on my end. The bot is having an existential moment. 🌀"
	WelcomeBackSuffix = " (Welcome back!)"

	bathroomReply   = "🚻 Nearest washrooms are just past Gallery 1. Here’s a map 🗺️ 👉 https://canyon.fake/bathrooms"
	directionsReply = "🗺️ Canyon is at 456 Postmodern Ave, New York, NY 10013.\n" +
		"Here’s a map: https://goo.gl/maps/xyzCanyon\n" +
		"Subway: Canal St (A/C/E/N/Q/R/6).\n" +
		"If you get lost, just text me—I’ll send a poetic rescue squad."
)

var greetings = []string{
	"Welcome to Canyon!",
	"Hey there — you made it!",
	"Hello from your Canyon Concierge",
	"Art and algorithms await!",
}

// Picker returns an index in [0, n).
type Picker func(n int) int

// Replier answers visitor messages from keyword rules and venue knowledge.
type Replier struct {
	venues venue.Store
	pick   Picker
}

// NewReplier builds a Replier. A nil pick falls back to math/rand.
func NewReplier(venues venue.Store, pick Picker) *Replier {
	if pick == nil {
		pick = rand.IntN
	}
	return &Replier{venues: venues, pick: pick}
}

// NiceToMeet acknowledges a freshly learned name.
func NiceToMeet(name string) string {
	return fmt.Sprintf("Nice to meet you, %s! How can I help?", name)
}

// Greeting picks a greeting, personalised when the name is known.
func (r *Replier) Greeting(name string, visited bool) string {
	base := greetings[r.pick(len(greetings))]
	if name != "" {
		base = fmt.Sprintf("%s %s,", base, name)
	}
	if visited {
		base += WelcomeBackSuffix
	}
	return base
}

// Answer returns the reply for a message from a visitor whose name is known.
func (r *Replier) Answer(text, name string, visited bool) string {
	switch intent.Classify(text) {
	case intent.Greeting:
		return r.Greeting(name, visited)
	case intent.Stop:
		return StepBackReply
	case intent.Bathroom:
		return bathroomReply
	case intent.Directions:
		return directionsReply
	case intent.Exhibition:
		if items := r.venues.Exhibitions(); len(items) > 0 {
			return "Don't miss " + items[r.pick(len(items))].String()
		}
	case intent.Menu:
		if items := r.venues.Menu(); len(items) > 0 {
			return "Try the " + items[r.pick(len(items))].String()
		}
	case intent.Event:
		if items := r.venues.Events(); len(items) > 0 {
			return "Coming up: " + items[r.pick(len(items))].String()
		}
	}
	return NoAnswerReply
}
