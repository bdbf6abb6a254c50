package speech

import "context"

// Synthesizer turns text into a complete MP3 clip. Implementations make one
// provider call per invocation and never retry.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// MockSynthesizer records the text it was asked to speak and returns canned
// bytes. Used by tests and by SPEECH_PROVIDER=mock for local development.
type MockSynthesizer struct {
	Audio    []byte
	Err      error
	LastText string
	Calls    int
}

func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{Audio: []byte("ID3mock-mp3")}
}

func (m *MockSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	m.LastText = text
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}
