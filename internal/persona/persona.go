package persona

import "strings"

// Mode selects the coaching persona's tone for a single request.
// The caller supplies it every time; nothing persists across sessions.
type Mode string

const (
	ModeAmbitious Mode = "Ambitious"
	ModeMom       Mode = "Mom"
	ModeReset     Mode = "Reset"
)

// DefaultMode is used whenever a request omits or misspells the mode.
var DefaultMode = ModeAmbitious

// Modes lists the recognized coaching modes in UI order.
func Modes() []Mode {
	return []Mode{ModeAmbitious, ModeMom, ModeReset}
}

// Parse maps a raw mode string onto a recognized Mode, case-insensitively.
// Unrecognized values pass through unchanged so prompt building can still
// degrade gracefully and the audio filename reflects what the client sent.
func Parse(raw string) Mode {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultMode
	}
	for _, m := range Modes() {
		if strings.EqualFold(raw, string(m)) {
			return m
		}
	}
	return Mode(raw)
}

const basePrompt = "You are Zen, a warm, grounded personal coach inside the Get Zen AF app. " +
	"Keep replies encouraging, practical, and easy to read aloud. " +
	"When you write affirmations, subliminals, or any affect-sensitive script, phrase everything positively; " +
	"never use negations or negatively framed language."

var toneClauses = map[Mode]string{
	ModeAmbitious: "Tone: high-energy and ambitious. Push toward bold goals, momentum, and decisive action.",
	ModeMom:       "Tone: nurturing and unconditionally supportive, like a loving mom who believes in you no matter what.",
	ModeReset:     "Tone: calm and soothing. Slow everything down, soften the pressure, and guide toward rest and perspective.",
}

// BuildSystemPrompt returns the full system instruction for a mode.
// Unknown modes get the base instruction with no tone clause; the mapping is
// total and never fails.
func BuildSystemPrompt(mode Mode) string {
	clause, ok := toneClauses[mode]
	if !ok {
		return basePrompt
	}
	return basePrompt + " " + clause
}
