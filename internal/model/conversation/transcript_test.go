package conversation

import (
	"strings"
	"testing"
	"time"
)

func TestTranscriptTextKeepsOnlyDialogue(t *testing.T) {
	c := New(Key{SessionID: "s", PatientID: "1"}, "You are Ahmed. *** CRITICAL SIMULATION RULES ***", "English")
	c.AppendExchange("Hello, I'm Dr. Lee. You are here for the cough?", "Yeah.")
	c.SwitchLanguage("Arabic")
	c.AppendExchange("How long?", "Years.")

	closedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	text := NewTranscript(c, "Patient 1: Ahmed (Respiratory)", closedAt).Text()

	var student, patient int
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		switch {
		case strings.HasPrefix(line, "Student: "):
			student++
		case strings.HasPrefix(line, "Patient AI: "):
			patient++
		}
		if strings.Contains(line, "System Command") || strings.Contains(line, "CRITICAL SIMULATION RULES") {
			t.Fatalf("internal turn leaked into transcript: %q", line)
		}
	}
	if student != 2 || patient != 2 {
		t.Fatalf("expected 2 student and 2 patient lines, got %d/%d\n%s", student, patient, text)
	}
	if !strings.Contains(text, "Student: Hello, I'm Dr. Lee. You are here for the cough?") {
		t.Fatal("student line containing \"You are\" must be kept")
	}
	if !strings.Contains(text, "Time: 2026-03-01 09:30:00") {
		t.Fatalf("missing timestamp header:\n%s", text)
	}
}
