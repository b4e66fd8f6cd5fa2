package persona

import (
	"strings"
	"testing"
)

func TestSeedPromptsCarrySimulationRules(t *testing.T) {
	store := NewMemoryStore(Seed())
	for _, p := range store.List() {
		got, ok := store.FindByID(p.ID)
		if !ok {
			t.Fatalf("persona %s not found", p.ID)
		}
		for _, rule := range []string{RuleNonDisclosure, RulePacing, RuleRapport} {
			if !strings.Contains(got.Prompt, rule) {
				t.Fatalf("persona %s prompt missing rule %q", p.ID, rule[:20])
			}
		}
		if !strings.Contains(got.Prompt, got.Biography.Identity) {
			t.Fatalf("persona %s prompt missing identity", p.ID)
		}
		if got.CredentialRef == "" {
			t.Fatalf("persona %s has no credential reference", p.ID)
		}
	}
}

func TestFindByIDUnknown(t *testing.T) {
	store := NewMemoryStore(Seed())
	if _, ok := store.FindByID("42"); ok {
		t.Fatal("expected unknown persona to be missing")
	}
}

func TestNewMemoryStoreKeepsExplicitPromptAndSkipsDuplicates(t *testing.T) {
	store := NewMemoryStore([]Persona{
		{ID: "a", Name: "first", Prompt: "custom"},
		{ID: "a", Name: "second"},
	})

	if n := len(store.List()); n != 1 {
		t.Fatalf("expected 1 persona, got %d", n)
	}
	got, _ := store.FindByID("a")
	if got.Name != "first" || got.Prompt != "custom" {
		t.Fatalf("unexpected persona: %+v", got)
	}
}

func TestBuildPromptSkipsEmptySections(t *testing.T) {
	prompt := BuildPrompt(Biography{Identity: "You are Kim."})
	if strings.Contains(prompt, "HISTORY:") {
		t.Fatal("empty history section should be omitted")
	}
	if !strings.HasPrefix(prompt, "You are Kim.\n") {
		t.Fatalf("unexpected prompt start: %q", prompt[:20])
	}
}
