package models

// PromptMessage is a role-tagged message handed to the completion provider.
// ImageURL, when set, is attached to the message as an image content part
// alongside the text; data URLs are accepted.
type PromptMessage struct {
	Role     Role
	Content  string
	ImageURL string
}
