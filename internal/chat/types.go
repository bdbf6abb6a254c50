package chat

// Message is a single conversational turn in provider wire order.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionRequest is the provider-shaped chat request. The first message is
// always the system prompt and the remainder is never empty.
type CompletionRequest struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Messages    []Message
}

// CompletionResponse carries the first completion's text. Reply may be empty
// when the provider returned success with a payload we could not interpret;
// the orchestrator substitutes a placeholder in that case.
type CompletionResponse struct {
	Reply string
}
