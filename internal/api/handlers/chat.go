package handlers

import (
	"net/http"
	"strconv"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type PostMessageRequest struct {
	Pseudo string `json:"pseudo"`
	Text   string `json:"text"`
}

type MessagesResponse struct {
	Messages []*domain.ChatMessage `json:"messages"`
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	messages, err := h.chatService.List(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if messages == nil {
		messages = []*domain.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, MessagesResponse{Messages: messages})
}

func (h *ChatHandler) Post(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req PostMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.chatService.Post(r.Context(), id, req.Pseudo, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
