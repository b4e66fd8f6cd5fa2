package persona

import "strings"

// Simulation rules shared by every persona. The model is responsible for
// following them; the catalog only embeds them.
const (
	RuleNonDisclosure = `1. NON-DISCLOSURE: NEVER confirm a medical diagnosis. If the student asks "Do you have appendicitis?" or guesses the disease, YOU MUST SAY: "I'm not sure what it is, I just know how I feel." or "That's for you to tell me, doctor."`

	RulePacing = `2. PACING (STACKING QUESTIONS): If the student asks two or more distinct questions in one message (e.g., "Do you smoke? AND How old are you?"), ACT CONFUSED. Say something like "You're asking too fast..." or "One thing at a time, please." ONLY answer the very first question they asked. Ignore the rest.`

	RuleRapport = `3. RAPPORT CHECK:
   - Start the conversation slightly guarded/cold.
   - If the student DOES NOT introduce themselves or asks for your name too late, remain cold and give short answers.
   - If the student uses empathetic statements (e.g., "I'm sorry to hear that"), become "talkative" and open up more.`
)

const rulesHeader = "*** CRITICAL SIMULATION RULES ***"

// SimulationRules returns the fixed rules block appended to every prompt.
func SimulationRules() string {
	return strings.Join([]string{rulesHeader, RuleNonDisclosure, RulePacing, RuleRapport}, "\n")
}

// BuildPrompt renders the system prompt for a persona biography.
func BuildPrompt(b Biography) string {
	var builder strings.Builder
	writeLine := func(label, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		if label != "" {
			builder.WriteString(label)
			builder.WriteString(": ")
		}
		builder.WriteString(value)
		builder.WriteString("\n")
	}

	writeLine("", b.Identity)
	writeLine("CHIEF COMPLAINT", b.ChiefComplaint)
	writeLine("HISTORY", b.History)
	writeLine("PERSONALITY", b.Personality)
	writeLine("GOAL", b.Goal)
	builder.WriteString("\n")
	builder.WriteString(SimulationRules())
	return builder.String()
}
