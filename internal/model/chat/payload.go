package chat

// WebchatRequest is the body posted to /webchat. The capitalised JSON keys
// are part of the server contract.
type WebchatRequest struct {
	Body    string `json:"Body"`
	User    string `json:"User"`
	Visited bool   `json:"Visited"`
}

// WebchatReply is the subset of the /webchat response the panel consumes.
type WebchatReply struct {
	Reply *string `json:"reply"`
}

// ResetReply is returned by /reset_session.
type ResetReply struct {
	Success bool `json:"success"`
}
