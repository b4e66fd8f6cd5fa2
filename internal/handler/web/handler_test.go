package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/hands-on/backend/internal/model/persona"
)

func TestIndexListsPersonas(t *testing.T) {
	h, err := New(persona.NewMemoryStore(persona.Seed()))
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, p := range persona.Seed() {
		if !strings.Contains(body, `id="btn-`+p.ID+`"`) {
			t.Fatalf("page missing persona %s", p.ID)
		}
	}
	if strings.Contains(body, "SIMULATION RULES") {
		t.Fatal("prompt must not be rendered into the page")
	}
}

func TestStaticScriptServed(t *testing.T) {
	h, err := New(persona.NewMemoryStore(nil))
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
