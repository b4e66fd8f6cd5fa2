package notify

import (
	"context"
	"log"
	"strings"

	"github.com/zhouzirui/hands-on/backend/internal/config"
	"github.com/zhouzirui/hands-on/backend/internal/model/conversation"
)

// Notifier emails closed-session transcripts to the moderator. Delivery is
// best effort: failures are logged, never returned.
type Notifier struct {
	mailer    Mailer
	sender    string
	password  string
	moderator string
}

// NewNotifier wires a notifier that sends through mailer.
func NewNotifier(mailer Mailer, cfg config.MailConfig) *Notifier {
	return &Notifier{
		mailer:    mailer,
		sender:    cfg.Username,
		password:  cfg.Password,
		moderator: cfg.Moderator,
	}
}

// SendTranscript mails transcript plus optional moderator notes.
func (n *Notifier) SendTranscript(ctx context.Context, transcript conversation.Transcript, notes string) {
	if n == nil || n.mailer == nil || n.sender == "" || n.password == "" {
		log.Printf("[notify] email credentials missing, log for %s not sent", transcript.PatientName)
		return
	}
	if n.moderator == "" {
		log.Printf("[notify] moderator address missing, log for %s not sent", transcript.PatientName)
		return
	}

	body := transcript.Text()
	if notes = strings.TrimSpace(notes); notes != "" {
		body += "\n" + notes + "\n"
	}

	email := Email{
		From:    n.sender,
		To:      n.moderator,
		Subject: "Hands On Log - " + transcript.PatientName + " - " + transcript.ClosedAt.Format("15:04"),
		Body:    body,
	}
	if err := n.mailer.Send(ctx, email); err != nil {
		log.Printf("[notify] failed to send email for session=%s patient=%s: %v", transcript.SessionID, transcript.PatientID, err)
		return
	}
	log.Printf("[notify] transcript for session=%s patient=%s sent to moderator", transcript.SessionID, transcript.PatientID)
}
