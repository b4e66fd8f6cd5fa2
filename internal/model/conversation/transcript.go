package conversation

import (
	"strings"
	"time"
)

// Transcript is the moderator-facing rendering of a closed conversation.
type Transcript struct {
	SessionID   string
	PatientID   string
	PatientName string
	Language    string
	ClosedAt    time.Time
	Lines       []TranscriptLine
}

// TranscriptLine is one dialogue line with its human label.
type TranscriptLine struct {
	Label string
	Text  string
}

// RoleLabel maps a role to the label used in transcripts.
func RoleLabel(r Role) string {
	if r == RoleStudent {
		return "Student"
	}
	return "Patient AI"
}

// NewTranscript builds a transcript from the dialogue turns of c.
func NewTranscript(c *Conversation, patientName string, closedAt time.Time) Transcript {
	dialogue := c.Dialogue()
	lines := make([]TranscriptLine, 0, len(dialogue))
	for _, t := range dialogue {
		lines = append(lines, TranscriptLine{Label: RoleLabel(t.Role), Text: t.Text})
	}
	return Transcript{
		SessionID:   c.Key.SessionID,
		PatientID:   c.Key.PatientID,
		PatientName: patientName,
		Language:    c.Language,
		ClosedAt:    closedAt,
		Lines:       lines,
	}
}

// Text renders the header and one "Label: text" line per turn.
func (t Transcript) Text() string {
	var b strings.Builder
	b.WriteString("SESSION LOG - HANDS ON PROJECT\n")
	b.WriteString("Patient: " + t.PatientName + "\n")
	b.WriteString("Time: " + t.ClosedAt.Format("2006-01-02 15:04:05") + "\n")
	b.WriteString(strings.Repeat("-", 30) + "\n")
	for _, line := range t.Lines {
		b.WriteString(line.Label)
		b.WriteString(": ")
		b.WriteString(line.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// StudentMessages returns the student's lines in order.
func (t Transcript) StudentMessages() []string {
	out := make([]string, 0, len(t.Lines)/2+1)
	for _, line := range t.Lines {
		if line.Label == RoleLabel(RoleStudent) {
			out = append(out, line.Text)
		}
	}
	return out
}
