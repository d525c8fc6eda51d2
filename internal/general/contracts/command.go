package contracts

// CommandMessage is an inbound dispatcher command arriving over the message
// bus instead of HTTP. It carries the same fields as POST /commands.
type CommandMessage struct {
	Text      string `json:"text"`
	UserID    string `json:"user_id"`
	ContextID string `json:"context_id"`

	Envelope
}

// CommandResultMessage mirrors the HTTP command response for bus consumers.
type CommandResultMessage struct {
	ContextID         string `json:"context_id"`
	ActionKind        string `json:"action_kind,omitempty"`
	TripID            int64  `json:"trip_id,omitempty"`
	NeedsConfirmation bool   `json:"needs_confirmation"`
	SessionID         string `json:"session_id,omitempty"`
	Executed          bool   `json:"executed"`
	Message           string `json:"message"`
	Error             string `json:"error,omitempty"`

	Envelope
}
