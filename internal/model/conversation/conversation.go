package conversation

import (
	"fmt"
	"time"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleStudent Role = "student"
	RolePatient Role = "patient"
)

// Kind separates the visible dialogue from internally injected turns.
type Kind string

const (
	KindPersonaSeed    Kind = "persona_seed"
	KindDirective      Kind = "directive"
	KindAcknowledgment Kind = "acknowledgment"
	KindDialogue       Kind = "dialogue"
)

const seedAcknowledgment = "(Internal: Ready.)"

// Turn is one role-tagged message.
type Turn struct {
	Role      Role      `json:"role"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Key namespaces a conversation by browser session and patient.
type Key struct {
	SessionID string `json:"sessionId"`
	PatientID string `json:"patientId"`
}

func (k Key) String() string {
	return k.SessionID + ":" + k.PatientID
}

// Conversation is the turn history of one student with one persona.
type Conversation struct {
	Key       Key       `json:"key"`
	Turns     []Turn    `json:"turns"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New seeds a conversation with the persona prompt and its acknowledgment.
func New(key Key, prompt, language string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		Key: key,
		Turns: []Turn{
			{Role: RoleStudent, Kind: KindPersonaSeed, Text: prompt, CreatedAt: now},
			{Role: RolePatient, Kind: KindAcknowledgment, Text: seedAcknowledgment, CreatedAt: now},
		},
		Language:  language,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SwitchLanguage appends a directive and its acknowledgment when lang differs
// from the last language used. It reports whether turns were appended.
func (c *Conversation) SwitchLanguage(lang string) bool {
	if lang == "" || lang == c.Language {
		return false
	}
	now := time.Now().UTC()
	directive := fmt.Sprintf("(System Command: The user has switched the language to %s. Please respond in %s from now on, but keep your persona character.)", lang, lang)
	ack := fmt.Sprintf("(Understood. Switching to %s.)", lang)
	c.Turns = append(c.Turns,
		Turn{Role: RoleStudent, Kind: KindDirective, Text: directive, CreatedAt: now},
		Turn{Role: RolePatient, Kind: KindAcknowledgment, Text: ack, CreatedAt: now},
	)
	c.Language = lang
	c.UpdatedAt = now
	return true
}

// AppendExchange records a student message and the patient's reply.
func (c *Conversation) AppendExchange(message, reply string) {
	now := time.Now().UTC()
	c.Turns = append(c.Turns,
		Turn{Role: RoleStudent, Kind: KindDialogue, Text: message, CreatedAt: now},
		Turn{Role: RolePatient, Kind: KindDialogue, Text: reply, CreatedAt: now},
	)
	c.UpdatedAt = now
}

// Dialogue returns the real exchange, skipping seed, directive and acknowledgment turns.
func (c *Conversation) Dialogue() []Turn {
	out := make([]Turn, 0, len(c.Turns))
	for _, t := range c.Turns {
		if t.Kind == KindDialogue {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a deep copy so stores never share the turn slice with callers.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Turns = append([]Turn(nil), c.Turns...)
	return &cp
}
