package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	DefaultSystemPrompt = "You are a helpful AI Mentor assistant."

	// Upper bounds on user input, enforced at the request boundary.
	MaxSessionTitleLength = 200
	MaxMessageLength      = 16000
)
