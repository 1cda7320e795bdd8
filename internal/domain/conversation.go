package domain

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    Role
	Content string
}

// UserProfile is supplied once per session and only shapes persona phrasing.
type UserProfile struct {
	Name      string
	Age       int
	Gender    string
	Education string
}

// Message is a role-tagged message sent to the completion service.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GroundingPayload is built fresh for each turn and never stored.
type GroundingPayload struct {
	System     string
	References string
	Window     []Turn
}

// Messages returns the system instruction followed by the turn window.
func (p GroundingPayload) Messages() []Message {
	out := make([]Message, 0, len(p.Window)+1)
	out = append(out, Message{Role: RoleSystem, Content: p.System})
	for _, t := range p.Window {
		out = append(out, Message{Role: t.Role, Content: t.Content})
	}
	return out
}
