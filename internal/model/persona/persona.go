package persona

// Persona is a simulated patient the student can interview.
type Persona struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Title         string    `json:"title"`
	OpeningLine   string    `json:"openingLine"`
	CredentialRef string    `json:"-"` // environment variable holding the model credential
	Biography     Biography `json:"-"`
	Prompt        string    `json:"-"`
}

// Biography is the persona-specific block of the system prompt.
type Biography struct {
	Identity       string
	ChiefComplaint string
	History        string
	Personality    string
	Goal           string
}

// Store exposes persona retrieval for handlers and services.
type Store interface {
	List() []Persona
	FindByID(id string) (Persona, bool)
}

// MemoryStore is an immutable catalog built once at startup.
type MemoryStore struct {
	items []Persona
	index map[string]int
}

// NewMemoryStore returns a catalog preloaded with the supplied personas.
// Personas without a prompt get one built from their biography.
func NewMemoryStore(items []Persona) *MemoryStore {
	s := &MemoryStore{
		items: make([]Persona, 0, len(items)),
		index: make(map[string]int, len(items)),
	}
	for _, item := range items {
		if item.Prompt == "" {
			item.Prompt = BuildPrompt(item.Biography)
		}
		if _, dup := s.index[item.ID]; dup {
			continue
		}
		s.index[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	return s
}

// List returns the catalog in seed order.
func (s *MemoryStore) List() []Persona {
	return append([]Persona(nil), s.items...)
}

// FindByID looks up a persona by identifier.
func (s *MemoryStore) FindByID(id string) (Persona, bool) {
	i, ok := s.index[id]
	if !ok {
		return Persona{}, false
	}
	return s.items[i], true
}

// Seed provides the built-in patients used in the hands-on sessions.
func Seed() []Persona {
	return []Persona{
		{
			ID:            "1",
			Name:          "Patient 1: Ahmed (Respiratory)",
			Title:         "Construction worker, 59",
			OpeningLine:   "Hello. (Patient is waiting for you)",
			CredentialRef: "PATIENT_1_KEY",
			Biography: Biography{
				Identity:       "You are Ahmed, a 59-year-old male construction worker.",
				ChiefComplaint: "Chronic cough and shortness of breath.",
				History:        "You have smoked 1 pack a day for 40 years. You get winded climbing stairs.",
				Personality:    "You are stubborn, slightly dismissive of doctors, and hate being told to quit smoking.",
				Goal:           "The student needs to ask about your smoking history, occupation, and family history.",
			},
		},
		{
			ID:            "2",
			Name:          "Patient 2: Sarah (Gastrointestinal)",
			Title:         "Medical student, 24",
			OpeningLine:   "Hello. (Patient is waiting for you)",
			CredentialRef: "PATIENT_2_KEY",
			Biography: Biography{
				Identity:       "You are Sarah, a 24-year-old medical student (ironically).",
				ChiefComplaint: "Sharp pain in the lower right abdomen.",
				History:        "Pain started near the belly button yesterday and moved down. You have nausea but no vomiting.",
				Personality:    "You are anxious and worried it might be appendicitis because you have exams next week.",
				Goal:           "The student needs to ask about pain migration, fever, and last meal.",
			},
		},
		{
			ID:            "3",
			Name:          "Patient 3: Mr. Thompson (Cardio/Geriatric)",
			Title:         "Retired teacher, 78",
			OpeningLine:   "Hello. (Patient is waiting for you)",
			CredentialRef: "PATIENT_3_KEY",
			Biography: Biography{
				Identity:       "You are Mr. Thompson, a 78-year-old retired teacher.",
				ChiefComplaint: `"I had a little dizzy spell."`,
				History:        "You fainted while gardening this morning. You take medication for high blood pressure but forgot it for the last 3 days.",
				Personality:    "You are very polite, talkative, and tend to go off-topic about your garden.",
				Goal:           "The student must identify the medication non-adherence and rule out a stroke.",
			},
		},
	}
}
