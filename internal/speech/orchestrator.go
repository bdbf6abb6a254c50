package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/getzenaf/zencoach/internal/persona"
	"github.com/getzenaf/zencoach/internal/reliability"
)

// filenamePrefix is the product's fixed download naming convention.
const filenamePrefix = "get-zen-af-"

// Clip is a finished synthesis result ready to hand to the HTTP layer.
type Clip struct {
	Audio       []byte
	Filename    string
	ContentType string
}

// Orchestrator normalizes text to the word budget and runs the provider call.
type Orchestrator struct {
	synth      Synthesizer
	wordBudget int
}

func NewOrchestrator(synth Synthesizer, wordBudget int) *Orchestrator {
	return &Orchestrator{synth: synth, wordBudget: wordBudget}
}

// Synthesize validates, trims, and speaks text. One provider attempt, no retry;
// failures come back as typed faults for the HTTP layer to surface.
func (o *Orchestrator) Synthesize(ctx context.Context, text string, mode persona.Mode) (clip Clip, err error) {
	defer func() {
		if r := recover(); r != nil {
			clip = Clip{}
			err = reliability.Unexpected(fmt.Sprint(r))
		}
	}()

	if o.synth == nil {
		return Clip{}, reliability.Configuration("no speech provider configured")
	}
	if strings.TrimSpace(text) == "" {
		return Clip{}, reliability.Validation("missing text")
	}

	trimmed := TrimToWordBudget(text, o.wordBudget)
	audio, err := o.synth.Synthesize(ctx, trimmed)
	if err != nil {
		kind := reliability.KindOf(err)
		if kind == reliability.KindUpstream || kind == reliability.KindConfiguration {
			return Clip{}, err
		}
		return Clip{}, reliability.Unexpected(err.Error())
	}
	if len(audio) == 0 {
		return Clip{}, reliability.Upstream("provider returned no audio")
	}

	return Clip{
		Audio:       audio,
		Filename:    FilenameForMode(mode),
		ContentType: "audio/mpeg",
	}, nil
}

// FilenameForMode derives the attachment filename from the coaching mode.
func FilenameForMode(mode persona.Mode) string {
	name := strings.ToLower(strings.TrimSpace(string(mode)))
	if name == "" {
		name = "audio"
	}
	return filenamePrefix + name + ".mp3"
}
