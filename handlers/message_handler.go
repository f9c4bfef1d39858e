package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"chatterAPI/internal/types/chat"
	"chatterAPI/middleware"
	"chatterAPI/services"
)

const messagePageSize = 15

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// SendMessage handles POST /messages: {chatId, message}.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	var req chat.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ChatID == 0 || req.Message == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}

	msg, err := h.messageService.Send(ctx, req.ChatID, memberID, req.Message)
	if err != nil {
		if errors.Is(err, services.ErrNotInChat) {
			respondWithError(w, http.StatusBadRequest, "You are not in this chat")
			return
		}
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "message": msg})
}

// GetMessages handles GET /messages/{chatId}?messageId=N: the newest page
// of messages, or the page before messageId when given.
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	if _, ok := middleware.GetMemberID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	chatID, ok := pathChatID(w, r)
	if !ok {
		return
	}

	var messages []chat.Message
	var err error
	if raw := r.URL.Query().Get("messageId"); raw != "" {
		beforeID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			respondWithError(w, http.StatusBadRequest, "Malformed parameter. messageId must be a number")
			return
		}
		messages, err = h.messageService.Before(ctx, chatID, beforeID, messagePageSize)
	} else {
		messages, err = h.messageService.Recent(ctx, chatID, messagePageSize)
	}
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"chatId": chatID, "rows": messages})
}
