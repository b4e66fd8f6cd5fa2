package rapport

import (
	"strings"
	"testing"
)

func TestAnalyzeDetectsIntroductionAndEmpathy(t *testing.T) {
	report := Analyze([]string{
		"Hello, my name is Dana, I'm a medical student.",
		"I'm sorry to hear you're in pain. When did it start?",
	})
	if !report.Introduced || report.IntroducedAt != 1 {
		t.Fatalf("expected introduction at message 1, got %+v", report)
	}
	if report.EmpathyStatements != 1 {
		t.Fatalf("expected 1 empathy statement, got %d", report.EmpathyStatements)
	}
	if report.StackedQuestions != 0 {
		t.Fatalf("expected no stacked questions, got %d", report.StackedQuestions)
	}
}

func TestAnalyzeFlagsStackedQuestions(t *testing.T) {
	report := Analyze([]string{"Do you smoke? How old are you?", "Really?!?", "What happened?"})
	if report.StackedQuestions != 1 {
		t.Fatalf("expected 1 stacked message, got %d", report.StackedQuestions)
	}
	if report.Introduced {
		t.Fatal("student never introduced themselves")
	}
}

func TestAnalyzeCountsDiagnosisGuesses(t *testing.T) {
	report := Analyze([]string{"Do you have appendicitis?", "Is it painful?"})
	if report.DiagnosisGuesses != 1 {
		t.Fatalf("expected 1 diagnosis guess, got %d", report.DiagnosisGuesses)
	}
}

func TestNotesEmptyWithoutMessages(t *testing.T) {
	if notes := Analyze(nil).Notes(); notes != "" {
		t.Fatalf("expected empty notes, got %q", notes)
	}
	notes := Analyze([]string{"hi"}).Notes()
	if !strings.Contains(notes, "Introduced themselves: no") {
		t.Fatalf("unexpected notes:\n%s", notes)
	}
}
