package handlers

import (
	"encoding/json"
	"net/http"

	"chatterAPI/internal/types/notification"
	"chatterAPI/middleware"
	"chatterAPI/services"
)

type NotificationHandler struct {
	pushService *services.PushService
}

func NewNotificationHandler(pushService *services.PushService) *NotificationHandler {
	return &NotificationHandler{pushService: pushService}
}

// RegisterDevice handles PUT /pushtoken: {token, platform}. Replaces any
// previous registration for the member.
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	var req notification.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}

	if err := h.pushService.RegisterDevice(ctx, memberID, req.Token, req.Platform); err != nil {
		respondInternalError(w, err)
		return
	}
	respondSuccess(w)
}

// RemoveDevice handles DELETE /pushtoken.
func (h *NotificationHandler) RemoveDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	if err := h.pushService.RemoveDevice(ctx, memberID); err != nil {
		respondInternalError(w, err)
		return
	}
	respondSuccess(w)
}
