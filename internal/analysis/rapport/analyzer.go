// Package rapport scores how a student conducted the interview, for the
// moderator notes attached to each transcript.
package rapport

import (
	"fmt"
	"strings"
)

// Signal is one interviewing behaviour the analyzer looks for.
type Signal string

const (
	Introduction   Signal = "introduction"
	Empathy        Signal = "empathy"
	DiagnosisGuess Signal = "diagnosis_guess"
)

// Report summarises the student's side of a conversation.
type Report struct {
	Messages          int
	Introduced        bool
	IntroducedAt      int // 1-based message index, 0 when never
	EmpathyStatements int
	StackedQuestions  int
	DiagnosisGuesses  int
}

var keywordBuckets = map[Signal][]string{
	Introduction: {
		"my name is", "i'm dr", "i am dr", "i'm doctor", "i am doctor", "i'm a medical student",
		"i am a medical student", "i'm a student", "i am a student", "i'll be", "nice to meet you",
	},
	Empathy: {
		"sorry to hear", "i'm sorry", "i am sorry", "that must be", "i understand", "i can imagine",
		"must be hard", "must be difficult", "must be frightening", "don't worry", "take your time",
		"thank you for sharing", "that sounds",
	},
	DiagnosisGuess: {
		"do you have", "could it be", "is it", "you might have", "i think you have", "sounds like you have",
		"diagnosis",
	},
}

var diagnosisTerms = []string{
	"appendicitis", "copd", "emphysema", "bronchitis", "cancer", "asthma", "stroke", "syncope",
	"hypertension", "heart attack", "infection", "gastritis", "pneumonia",
}

// Analyze scores the student's messages in conversation order.
func Analyze(studentMessages []string) Report {
	report := Report{Messages: len(studentMessages)}
	for i, raw := range studentMessages {
		normalized := strings.ToLower(strings.TrimSpace(raw))
		if normalized == "" {
			continue
		}
		if !report.Introduced && matchesAny(normalized, keywordBuckets[Introduction]) {
			report.Introduced = true
			report.IntroducedAt = i + 1
		}
		if matchesAny(normalized, keywordBuckets[Empathy]) {
			report.EmpathyStatements++
		}
		if countQuestions(raw) > 1 {
			report.StackedQuestions++
		}
		if matchesAny(normalized, keywordBuckets[DiagnosisGuess]) && matchesAny(normalized, diagnosisTerms) {
			report.DiagnosisGuesses++
		}
	}
	return report
}

// Notes renders the report as plain text for the moderator email.
func (r Report) Notes() string {
	if r.Messages == 0 {
		return ""
	}

	introduced := "no"
	if r.Introduced {
		introduced = fmt.Sprintf("yes (message %d)", r.IntroducedAt)
	}

	var b strings.Builder
	b.WriteString("INTERVIEW NOTES (automatic)\n")
	fmt.Fprintf(&b, "Student messages: %d\n", r.Messages)
	fmt.Fprintf(&b, "Introduced themselves: %s\n", introduced)
	fmt.Fprintf(&b, "Empathetic statements: %d\n", r.EmpathyStatements)
	fmt.Fprintf(&b, "Messages with stacked questions: %d\n", r.StackedQuestions)
	fmt.Fprintf(&b, "Direct diagnosis guesses: %d\n", r.DiagnosisGuesses)
	return b.String()
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// countQuestions counts question marks, collapsing runs like "??" or "?!?".
func countQuestions(text string) int {
	count := 0
	inRun := false
	for _, r := range text {
		switch r {
		case '?', '؟':
			if !inRun {
				count++
			}
			inRun = true
		case '!', ' ':
			// keep the run open across "?!" and trailing spaces
		default:
			inRun = false
		}
	}
	return count
}
