package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getzenaf/zencoach/internal/persona"
	"github.com/getzenaf/zencoach/internal/reliability"
)

// fallbackUserMessage keeps the provider call non-empty when a request
// arrives with no usable conversation at all.
const fallbackUserMessage = "Give me a quick pep talk to get my day started."

// placeholderReply is returned when the provider reports success but the
// completion payload cannot be interpreted. The user always gets a response
// on the success path, never a raw error.
const placeholderReply = "Sorry, I lost my train of thought for a second there. Ask me again?"

// ModelParams pins the model settings applied to every provider request.
type ModelParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Orchestrator assembles a guaranteed-valid provider request from a raw
// inbound body and interprets the provider's response or failure.
type Orchestrator struct {
	client Client
	params ModelParams
}

func NewOrchestrator(client Client, params ModelParams) *Orchestrator {
	return &Orchestrator{client: client, params: params}
}

// requestBody is the lenient inbound shape. Individual messages stay raw so a
// single junk entry cannot fail decoding of the rest.
type requestBody struct {
	Messages []json.RawMessage `json:"messages"`
	Mode     string            `json:"mode"`
}

// Handle runs the full chat pass: validate, sanitize, assemble, call, interpret.
// A malformed body is treated as empty, not fatal; only the missing credential
// and the provider call itself can fail the request.
func (o *Orchestrator) Handle(ctx context.Context, rawBody []byte) (reply string, mode persona.Mode, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = ""
			err = reliability.Unexpected(fmt.Sprint(r))
		}
	}()

	mode = persona.DefaultMode
	if o.client == nil {
		return "", mode, reliability.Configuration("missing OPENAI_API_KEY")
	}

	var body requestBody
	// Parse failures are tolerated; an unreadable body behaves like an empty one.
	_ = json.Unmarshal(rawBody, &body)

	mode = persona.Parse(body.Mode)
	messages := Sanitize(body.Messages)
	if len(messages) == 0 {
		messages = []Message{{Role: RoleUser, Content: fallbackUserMessage}}
	}

	req := CompletionRequest{
		Model:       o.params.Model,
		Temperature: o.params.Temperature,
		MaxTokens:   o.params.MaxTokens,
		Messages:    append([]Message{{Role: RoleSystem, Content: persona.BuildSystemPrompt(mode)}}, messages...),
	}

	res, err := o.client.Complete(ctx, req)
	if err != nil {
		if reliability.KindOf(err) == reliability.KindUpstream {
			return "", mode, err
		}
		return "", mode, reliability.Unexpected(err.Error())
	}

	if strings.TrimSpace(res.Reply) == "" {
		return placeholderReply, mode, nil
	}
	return res.Reply, mode, nil
}
