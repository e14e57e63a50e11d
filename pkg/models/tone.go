package models

// Tone selects the register of the generated letter. It steers style only;
// factual content is constrained by the matched experiences regardless of tone.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneEmotional    Tone = "emotional"
	ToneConfident    Tone = "confident"
	ToneCreative     Tone = "creative"
)

// Directive returns the style directive handed to the letter writer
func (t Tone) Directive() string {
	switch t {
	case ToneEmotional:
		return "Emotionally intelligent, detailed, and clearly tailored to the role and mission. Shows initiative, reflection, and care."
	case ToneConfident:
		return "Confident, enthusiastic, and results-oriented. Emphasizes achievements and impact."
	case ToneCreative:
		return "Creative, innovative, and forward-thinking. Shows unique perspective and problem-solving approach."
	default:
		return "Professional, concise, and clearly tailored to the role. Direct, specific, and achievement-focused. Avoids filler, excessive warmth, or verbosity."
	}
}

// IsValid reports whether the tone is one of the supported registers
func (t Tone) IsValid() bool {
	switch t {
	case ToneProfessional, ToneEmotional, ToneConfident, ToneCreative:
		return true
	}
	return false
}
