package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"chatterAPI/internal/types/chat"
	"chatterAPI/middleware"
	"chatterAPI/services"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreateChat handles POST /chats: {name, memberIds}.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	var req chat.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}

	chatID, err := h.chatService.CreateChat(ctx, memberID, req.Name, req.MemberIDs)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "chatId": chatID})
}

// AddMembers handles PUT /chats/{chatId}: {memberIds}.
func (h *ChatHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
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

	var req chat.AddMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.MemberIDs) == 0 {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}

	if err := h.chatService.AddMembers(ctx, chatID, req.MemberIDs); err != nil {
		switch {
		case errors.Is(err, services.ErrChatNotFound):
			respondWithError(w, http.StatusNotFound, "Chat ID not found")
		case errors.Is(err, services.ErrAlreadyInChat):
			respondWithError(w, http.StatusBadRequest, "Some of the selected contacts already joined the room. Please only select contacts that have not joined the chat yet.")
		default:
			respondInternalError(w, err)
		}
		return
	}
	respondSuccess(w)
}

// ListChats handles GET /chats.
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	chats, err := h.chatService.ListChats(ctx, memberID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

// ListMembers handles GET /chats/{chatId}.
func (h *ChatHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
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

	members, err := h.chatService.ListMembers(ctx, chatID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"members": members})
}

// LeaveChat handles DELETE /chats/{chatId}: the caller leaves the room.
func (h *ChatHandler) LeaveChat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	chatID, ok := pathChatID(w, r)
	if !ok {
		return
	}

	if err := h.chatService.LeaveChat(ctx, chatID, memberID); err != nil {
		if errors.Is(err, services.ErrNotInChat) {
			respondWithError(w, http.StatusBadRequest, "You are not in this chat")
			return
		}
		respondInternalError(w, err)
		return
	}
	respondSuccess(w)
}

func pathChatID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw, present := mux.Vars(r)["chatId"]
	if !present || raw == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Malformed parameter. chatId must be a number")
		return 0, false
	}
	return id, true
}
