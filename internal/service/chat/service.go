package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/hands-on/backend/internal/analysis/rapport"
	"github.com/zhouzirui/hands-on/backend/internal/archive"
	"github.com/zhouzirui/hands-on/backend/internal/model/conversation"
	"github.com/zhouzirui/hands-on/backend/internal/model/persona"
	"github.com/zhouzirui/hands-on/backend/internal/service/ai"
	"github.com/zhouzirui/hands-on/backend/internal/store"
)

var (
	ErrMessageRequired   = errors.New("message is required")
	ErrSessionRequired   = errors.New("session id is required")
	ErrPersonaNotFound   = errors.New("invalid patient id")
	ErrCredentialMissing = ai.ErrCredentialMissing
	ErrModel             = errors.New("model call failed")
	ErrNoActiveSession   = errors.New("no active session found")
)

// Generators resolves the model generator bound to a persona.
type Generators interface {
	For(personaID string) (ai.Generator, error)
}

// TranscriptNotifier receives transcripts of closed sessions. It must not fail the caller.
type TranscriptNotifier interface {
	SendTranscript(ctx context.Context, transcript conversation.Transcript, notes string)
}

// Options tune a Service.
type Options struct {
	DefaultLanguage string
	Archive         archive.Archive
	Now             func() time.Time
}

// Service runs chat turns against persona generators and closes sessions.
type Service struct {
	personas        persona.Store
	models          Generators
	store           store.Store
	notifier        TranscriptNotifier
	archive         archive.Archive
	locks           *store.KeyLocker
	defaultLanguage string
	now             func() time.Time
}

// NewService wires the chat service.
func NewService(personas persona.Store, models Generators, st store.Store, notifier TranscriptNotifier, opts Options) *Service {
	lang := strings.TrimSpace(opts.DefaultLanguage)
	if lang == "" {
		lang = "English"
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		personas:        personas,
		models:          models,
		store:           st,
		notifier:        notifier,
		archive:         opts.Archive,
		locks:           store.NewKeyLocker(),
		defaultLanguage: lang,
		now:             now,
	}
}

// TurnRequest is one student message for a persona.
type TurnRequest struct {
	SessionID string
	PatientID string
	Message   string
	Language  string
}

// SendMessage forwards the message with the full conversation history and returns the reply.
func (s *Service) SendMessage(ctx context.Context, req TurnRequest) (string, error) {
	return s.runTurn(ctx, req, func(gen ai.Generator, history []*schema.Message) (string, error) {
		return gen.Generate(ctx, history, req.Message)
	})
}

// StreamMessage behaves like SendMessage but reports reply fragments through onDelta.
func (s *Service) StreamMessage(ctx context.Context, req TurnRequest, onDelta func(string)) (string, error) {
	return s.runTurn(ctx, req, func(gen ai.Generator, history []*schema.Message) (string, error) {
		return gen.Stream(ctx, history, req.Message, onDelta)
	})
}

type generateFunc func(gen ai.Generator, history []*schema.Message) (string, error)

func (s *Service) runTurn(ctx context.Context, req TurnRequest, generate generateFunc) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", ErrMessageRequired
	}
	if req.SessionID == "" {
		return "", ErrSessionRequired
	}

	p, ok := s.personas.FindByID(req.PatientID)
	if !ok {
		return "", ErrPersonaNotFound
	}

	gen, err := s.models.For(p.ID)
	if err != nil {
		return "", fmt.Errorf("patient %s: %w", p.ID, err)
	}

	key := conversation.Key{SessionID: req.SessionID, PatientID: p.ID}
	unlock := s.locks.Lock(key)
	defer unlock()

	conv, created, err := s.loadOrCreate(ctx, key, p)
	if err != nil {
		return "", err
	}

	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = s.defaultLanguage
	}
	switched := conv.SwitchLanguage(language)

	// Seed and directive turns are committed before the model call; the
	// exchange itself is only appended once the model has answered.
	if created || switched {
		if err := s.store.Put(ctx, conv); err != nil {
			return "", fmt.Errorf("save conversation: %w", err)
		}
	}

	reply, err := generate(gen, ai.ToMessages(conv.Turns))
	if err != nil {
		log.Printf("[chat] model call failed for session=%s patient=%s: %v", key.SessionID, key.PatientID, err)
		return "", fmt.Errorf("%w: %w", ErrModel, err)
	}

	conv.AppendExchange(req.Message, reply)
	if err := s.store.Put(ctx, conv); err != nil {
		return "", fmt.Errorf("save conversation: %w", err)
	}

	log.Printf("[chat] session=%s patient=%s turns=%d language=%s reply_len=%d", key.SessionID, key.PatientID, len(conv.Turns), conv.Language, len(reply))
	return reply, nil
}

func (s *Service) loadOrCreate(ctx context.Context, key conversation.Key, p persona.Persona) (*conversation.Conversation, bool, error) {
	conv, err := s.store.Get(ctx, key)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("load conversation: %w", err)
	}
	return conversation.New(key, p.Prompt, s.defaultLanguage), true, nil
}

// CloseResult describes a closed session.
type CloseResult struct {
	Transcript conversation.Transcript
	Notes      string
}

// CloseSession emails the transcript of the (session, patient) conversation
// to the moderator and forgets it. Notification and archive failures are
// logged and do not change the outcome.
func (s *Service) CloseSession(ctx context.Context, sessionID, patientID string) (CloseResult, error) {
	if sessionID == "" || patientID == "" {
		return CloseResult{}, ErrNoActiveSession
	}

	key := conversation.Key{SessionID: sessionID, PatientID: patientID}
	unlock := s.locks.Lock(key)
	defer unlock()

	conv, err := s.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return CloseResult{}, ErrNoActiveSession
	}
	if err != nil {
		return CloseResult{}, fmt.Errorf("load conversation: %w", err)
	}

	patientName := patientID
	if p, ok := s.personas.FindByID(patientID); ok {
		patientName = p.Name
	}

	transcript := conversation.NewTranscript(conv, patientName, s.now())
	notes := rapport.Analyze(transcript.StudentMessages()).Notes()

	// Delivery and archiving outlive the request.
	detached := context.WithoutCancel(ctx)
	if s.notifier != nil {
		s.notifier.SendTranscript(detached, transcript, notes)
	}
	if s.archive != nil {
		if err := s.archive.Save(detached, transcript, notes); err != nil {
			log.Printf("[chat] failed to archive transcript for session=%s patient=%s: %v", sessionID, patientID, err)
		}
	}

	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, store.ErrNotFound) {
		return CloseResult{}, fmt.Errorf("delete conversation: %w", err)
	}

	log.Printf("[chat] closed session=%s patient=%s lines=%d", sessionID, patientID, len(transcript.Lines))
	return CloseResult{Transcript: transcript, Notes: notes}, nil
}
