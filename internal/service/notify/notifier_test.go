package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zhouzirui/hands-on/backend/internal/config"
	"github.com/zhouzirui/hands-on/backend/internal/model/conversation"
)

type recordingMailer struct {
	sent []Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, email Email) error {
	m.sent = append(m.sent, email)
	return m.err
}

func sampleTranscript() conversation.Transcript {
	return conversation.Transcript{
		SessionID:   "sess",
		PatientID:   "2",
		PatientName: "Patient 2: Sarah (Gastrointestinal)",
		ClosedAt:    time.Date(2026, 5, 4, 14, 7, 0, 0, time.UTC),
		Lines: []conversation.TranscriptLine{
			{Label: "Student", Text: "Where is the pain?"},
			{Label: "Patient AI", Text: "Lower right."},
		},
	}
}

func TestSendTranscriptComposesEmail(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, config.MailConfig{Username: "bot@example.com", Password: "pw", Moderator: "mod@example.com"})

	n.SendTranscript(context.Background(), sampleTranscript(), "INTERVIEW NOTES\nIntroduced: no")

	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(mailer.sent))
	}
	got := mailer.sent[0]
	if got.From != "bot@example.com" || got.To != "mod@example.com" {
		t.Fatalf("unexpected addresses: %+v", got)
	}
	if got.Subject != "Hands On Log - Patient 2: Sarah (Gastrointestinal) - 14:07" {
		t.Fatalf("unexpected subject %q", got.Subject)
	}
	if !strings.Contains(got.Body, "Student: Where is the pain?") || !strings.Contains(got.Body, "Introduced: no") {
		t.Fatalf("unexpected body:\n%s", got.Body)
	}
}

func TestSendTranscriptSkipsWithoutCredentials(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer, config.MailConfig{Moderator: "mod@example.com"})

	n.SendTranscript(context.Background(), sampleTranscript(), "")

	if len(mailer.sent) != 0 {
		t.Fatal("mailer must not be called without sender credentials")
	}
}

func TestSendTranscriptSwallowsDeliveryErrors(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("535 authentication failed")}
	n := NewNotifier(mailer, config.MailConfig{Username: "bot@example.com", Password: "pw", Moderator: "mod@example.com"})

	n.SendTranscript(context.Background(), sampleTranscript(), "")

	if len(mailer.sent) != 1 {
		t.Fatalf("expected a delivery attempt, got %d", len(mailer.sent))
	}
}
