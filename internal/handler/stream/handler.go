package stream

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatHandler "github.com/zhouzirui/hands-on/backend/internal/handler/chat"
	"github.com/zhouzirui/hands-on/backend/internal/middleware"
	chatService "github.com/zhouzirui/hands-on/backend/internal/service/chat"
	"github.com/zhouzirui/hands-on/backend/pkg/utils"
)

// Handler streams patient replies via Server-Sent Events.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册流式聊天路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/stream", h.handleStream)
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	PatientID string `json:"patientId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	var payload chatHandler.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Headers are committed on the first delta so that validation errors can
	// still be answered with a plain JSON status.
	started := false
	start := func() {
		if started {
			return
		}
		started = true
		utils.SetupSSEHeaders(w)
		utils.SendSSEChunk(w, flusher, StreamResponse{Event: "start", PatientID: payload.PatientID})
	}

	req := payload.TurnRequest(r)
	reply, err := h.chatSvc.StreamMessage(r.Context(), req, func(delta string) {
		start()
		utils.SendSSEChunk(w, flusher, StreamResponse{Event: "delta", PatientID: payload.PatientID, Content: delta})
	})
	if err != nil {
		status, message := chatHandler.TurnErrorStatus(err, payload.PatientID)
		if !started {
			utils.RespondError(w, status, message)
			return
		}
		utils.SendSSEChunk(w, flusher, StreamResponse{Event: "error", Error: message})
		return
	}

	start()
	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "message", PatientID: payload.PatientID, Content: reply})
	utils.SendSSEChunk(w, flusher, StreamResponse{Event: "end", PatientID: payload.PatientID, Finished: true})

	log.Printf("[stream] completed response for session=%s, patient=%s", middleware.SessionID(r.Context()), payload.PatientID)
}
