// Package web serves the chat page.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/hands-on/backend/internal/model/persona"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Handler renders the chat page parameterized by the persona catalog.
type Handler struct {
	personas persona.Store
	index    *template.Template
	static   http.Handler
}

// New parses the embedded templates.
func New(personas persona.Store) (*Handler, error) {
	index, err := template.ParseFS(assets, "templates/index.html")
	if err != nil {
		return nil, err
	}
	staticFS, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}
	return &Handler{
		personas: personas,
		index:    index,
		static:   http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))),
	}, nil
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Handle("/static/*", h.static)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.index.Execute(&buf, map[string]any{"Personas": h.personas.List()}); err != nil {
		log.Printf("[web] failed to render index: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
