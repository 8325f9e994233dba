package chat

import "time"

// Session captures the server-side state of one anonymous web visitor.
type Session struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName,omitempty"`
	AskedName bool      `json:"askedName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
