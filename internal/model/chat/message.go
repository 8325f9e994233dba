package chat

import (
	"time"

	"github.com/google/uuid"
)

// Sender tags who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// Fixed texts shown by the panel.
const (
	WelcomeText      = "👋 Welcome to Canyon Concierge! Text your questions or requests below."
	FallbackText     = "Oops, something glitched. Try again?"
	ResetFailedText  = "Could not reset session."
	DefaultGuestUser = "Web Guest"
)

// Message is one rendered chat line. It is never modified after it has been
// appended to a view.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewMessage stamps a fresh message with an id and creation time.
func NewMessage(text string, sender Sender) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}
