package models

// Role identifies who produced a conversation turn or prompt message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn captures one exchange entry in a conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
