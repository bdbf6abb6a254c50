package chat

import "context"

// Client calls a chat completions provider. One attempt per request; retry
// policy, if any, belongs to the caller.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// MockClient returns a canned reply and records the last request it saw.
// Used by tests and by CHAT_PROVIDER=mock for local development.
type MockClient struct {
	Reply    string
	Err      error
	LastReq  CompletionRequest
	Requests int
}

func NewMockClient(reply string) *MockClient {
	return &MockClient{Reply: reply}
}

func (c *MockClient) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	c.LastReq = req
	c.Requests++
	if c.Err != nil {
		return CompletionResponse{}, c.Err
	}
	return CompletionResponse{Reply: c.Reply}, nil
}
