package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"chatterAPI/internal/types/contact"
	"chatterAPI/middleware"
	"chatterAPI/services"

	"github.com/gorilla/mux"
)

type ContactHandler struct {
	contactService *services.ContactService
	memberService  *services.MemberService
}

func NewContactHandler(contactService *services.ContactService, memberService *services.MemberService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		memberService:  memberService,
	}
}

// RequestContact handles POST /contactrequests: body {username} names the
// member to request.
func (h *ContactHandler) RequestContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	var req contact.AddContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}

	if err := h.contactService.RequestContact(ctx, memberID, req.Username); err != nil {
		respondContactError(w, err)
		return
	}
	respondSuccess(w)
}

// ConfirmContact handles POST /contactrequests/{memberId}: the path id is
// the requester whose pending request the caller accepts.
func (h *ContactHandler) ConfirmContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	requesterID, ok := pathMemberID(w, r)
	if !ok {
		return
	}

	if err := h.contactService.ConfirmContact(ctx, memberID, requesterID); err != nil {
		respondContactError(w, err)
		return
	}
	respondSuccess(w)
}

// DenyContact handles DELETE /contactrequests/{memberId}.
func (h *ContactHandler) DenyContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	requesterID, ok := pathMemberID(w, r)
	if !ok {
		return
	}

	if err := h.contactService.DenyContact(ctx, memberID, requesterID); err != nil {
		respondContactError(w, err)
		return
	}
	respondSuccess(w)
}

// ListPending handles GET /contactrequests.
func (h *ContactHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	requests, err := h.contactService.ListPendingIncoming(ctx, memberID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"contactRequests": requests})
}

// ListContacts handles GET /contacts. An empty directory is a 200 with an
// empty list, not an error.
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	contacts, err := h.contactService.ListConfirmedContacts(ctx, memberID)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

// GetContact handles GET /contacts/{memberId}: view one confirmed contact.
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	otherID, ok := pathMemberID(w, r)
	if !ok {
		return
	}

	profile, err := h.contactService.GetContact(ctx, memberID, otherID)
	if err != nil {
		respondContactError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// RemoveContact handles DELETE /contacts/{memberId}: removes a pending or
// confirmed relationship with the named member.
func (h *ContactHandler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	memberID, ok := middleware.GetMemberID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	otherID, ok := pathMemberID(w, r)
	if !ok {
		return
	}

	if err := h.contactService.RemoveContact(ctx, memberID, otherID); err != nil {
		respondContactError(w, err)
		return
	}
	respondSuccess(w)
}

// Search handles GET /contacts/search/{username}: exact, case-insensitive
// username search.
func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	if _, ok := middleware.GetMemberID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	username := mux.Vars(r)["username"]
	if username == "" {
		respondWithError(w, http.StatusBadRequest, "Missing parameters")
		return
	}

	results, err := h.memberService.SearchByUsername(ctx, username)
	if err != nil {
		respondInternalError(w, err)
		return
	}
	if len(results) == 0 {
		respondWithError(w, http.StatusNotFound, "No matches found")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"results": results})
}

// GetMember handles GET /members/{memberId}: any member's public profile,
// contact or not.
func (h *ContactHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	if _, ok := middleware.GetMemberID(ctx); !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthenticated)
		return
	}

	memberID, ok := pathMemberID(w, r)
	if !ok {
		return
	}

	profile, err := h.memberService.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			respondWithError(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// pathMemberID parses the {memberId} path variable, answering the request
// itself when the parameter is missing or malformed.
func pathMemberID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw, present := mux.Vars(r)["memberId"]
	if !present || raw == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, msgMalformedID)
		return 0, false
	}
	return id, true
}
