package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/hands-on/backend/internal/handler/chat"
	"github.com/zhouzirui/hands-on/backend/internal/handler/persona"
	"github.com/zhouzirui/hands-on/backend/internal/handler/stream"
	"github.com/zhouzirui/hands-on/backend/internal/handler/web"
	middlewarePkg "github.com/zhouzirui/hands-on/backend/internal/middleware"
	personaModel "github.com/zhouzirui/hands-on/backend/internal/model/persona"
	chatService "github.com/zhouzirui/hands-on/backend/internal/service/chat"
	"github.com/zhouzirui/hands-on/backend/pkg/utils"
)

// Options tune the router.
type Options struct {
	CookieSecure bool
	Streaming    bool
}

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, chatSvc *chatService.Service, opts Options) (http.Handler, error) {
	page, err := web.New(personas)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(sr chi.Router) {
		sr.Use(middlewarePkg.Session(opts.CookieSecure))

		page.RegisterRoutes(sr)
		chat.New(chatSvc).RegisterRoutes(sr)
		if opts.Streaming {
			stream.New(chatSvc).RegisterRoutes(sr)
		}
	})

	r.Route("/api", func(api chi.Router) {
		persona.New(personas).RegisterRoutes(api)
	})

	return r, nil
}
