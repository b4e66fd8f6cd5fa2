package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/hands-on/backend/internal/middleware"
	chatService "github.com/zhouzirui/hands-on/backend/internal/service/chat"
	"github.com/zhouzirui/hands-on/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/reset", h.handleReset)
}

// ChatRequest is the body of POST /chat and POST /chat/stream.
type ChatRequest struct {
	Message   string `json:"message"`
	PatientID string `json:"patient_id"`
	Language  string `json:"language,omitempty"`
}

// TurnRequest binds the body to the caller's browser session.
func (p ChatRequest) TurnRequest(r *http.Request) chatService.TurnRequest {
	return chatService.TurnRequest{
		SessionID: middleware.SessionID(r.Context()),
		PatientID: p.PatientID,
		Message:   p.Message,
		Language:  p.Language,
	}
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.chatSvc.SendMessage(r.Context(), payload.TurnRequest(r))
	if err != nil {
		status, message := TurnErrorStatus(err, payload.PatientID)
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": reply})
}

// TurnErrorStatus maps chat service errors to an HTTP status and client message.
func TurnErrorStatus(err error, patientID string) (int, string) {
	switch {
	case errors.Is(err, chatService.ErrMessageRequired):
		return http.StatusBadRequest, "message is required"
	case errors.Is(err, chatService.ErrPersonaNotFound):
		return http.StatusBadRequest, "Invalid Patient ID"
	case errors.Is(err, chatService.ErrSessionRequired):
		return http.StatusBadRequest, "session is required"
	case errors.Is(err, chatService.ErrCredentialMissing):
		return http.StatusInternalServerError, fmt.Sprintf("API Key for Patient %s not found on server.", patientID)
	case errors.Is(err, chatService.ErrModel):
		return http.StatusInternalServerError, err.Error()
	default:
		log.Printf("[chat] unexpected error: %v", err)
		return http.StatusInternalServerError, "internal error"
	}
}

type resetResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PatientID string `json:"patient_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondJSON(w, http.StatusBadRequest, resetResponse{Status: "error", Message: "invalid request body"})
		return
	}

	_, err := h.chatSvc.CloseSession(r.Context(), middleware.SessionID(r.Context()), payload.PatientID)
	switch {
	case err == nil:
		utils.RespondJSON(w, http.StatusOK, resetResponse{Status: "success", Message: "Session reset and log sent to moderator."})
	case errors.Is(err, chatService.ErrNoActiveSession):
		utils.RespondJSON(w, http.StatusOK, resetResponse{Status: "error", Message: "No active session found."})
	default:
		log.Printf("[chat] reset failed for patient=%s: %v", payload.PatientID, err)
		utils.RespondJSON(w, http.StatusInternalServerError, resetResponse{Status: "error", Message: "failed to reset session"})
	}
}
