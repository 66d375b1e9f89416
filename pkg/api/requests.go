package api

// ContactRequest is the body of POST /contact. Both JSON and form encodings
// are accepted.
type ContactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Service string `json:"service" form:"service"`
	Message string `json:"message" form:"message"`
}

// LoginRequest is the body of POST /login. The token is issued by the
// backend; this server only keeps it for the visitor.
type LoginRequest struct {
	Token string `json:"token" form:"token"`
}

// ChatInputRequest is the body of PUT /api/chat/input.
type ChatInputRequest struct {
	Text string `json:"text"`
}

// ChatMessageRequest is the body of POST /api/chat/messages. A missing text
// submits the pending input instead.
type ChatMessageRequest struct {
	Text *string `json:"text"`
}
