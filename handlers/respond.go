package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"chatterAPI/services"
)

const requestTimeout = 5 * time.Second

// Error messages the mobile clients display verbatim.
const (
	msgMissingInfo     = "Missing required information"
	msgMalformedID     = "Malformed parameter. memberId must be a number"
	msgNotARequest     = "Contact request not found"
	msgNotAContact     = "User is not a contact"
	msgNotConfirmed    = "Contact is not confirmed"
	msgUserNotFound    = "User not found"
	msgStoreTimeout    = "Service temporarily unavailable"
	msgInternalError   = "Internal server error"
	msgUnauthenticated = "User not authenticated"
)

// handlerContext caps every request's store work at a shared timeout.
func handlerContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"message": message})
}

func respondSuccess(w http.ResponseWriter) {
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// respondContactError maps contact directory sentinels onto the messages
// the clients expect. Anything unrecognized falls through to
// respondInternalError so no store detail leaks.
func respondContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownUser):
		respondWithError(w, http.StatusBadRequest, "Username does not exist.")
	case errors.Is(err, services.ErrSelfContact):
		respondWithError(w, http.StatusBadRequest, "User is attempting to add themself.")
	case errors.Is(err, services.ErrAlreadyContacts):
		respondWithError(w, http.StatusBadRequest, "You are already contacts with this person.")
	case errors.Is(err, services.ErrRequestAlreadySent):
		respondWithError(w, http.StatusBadRequest, "You already sent a request to this person and they have not responded.")
	case errors.Is(err, services.ErrRequestPendingFromOther):
		respondWithError(w, http.StatusBadRequest, "You have an open request from this person. Simply accept it to add them as a contact.")
	case errors.Is(err, services.ErrRequestNotFound):
		respondWithError(w, http.StatusBadRequest, msgNotARequest)
	case errors.Is(err, services.ErrNotAContact):
		respondWithError(w, http.StatusBadRequest, msgNotAContact)
	case errors.Is(err, services.ErrContactNotConfirmed):
		respondWithError(w, http.StatusBadRequest, msgNotConfirmed)
	case errors.Is(err, services.ErrMemberNotFound):
		respondWithError(w, http.StatusBadRequest, msgUserNotFound)
	default:
		respondInternalError(w, err)
	}
}

// respondInternalError hides store errors from the client. A deadline
// expiry is reported as temporary unavailability so clients retry.
func respondInternalError(w http.ResponseWriter, err error) {
	log.Printf("handler error: %v", err)
	if errors.Is(err, context.DeadlineExceeded) {
		respondWithError(w, http.StatusServiceUnavailable, msgStoreTimeout)
		return
	}
	respondWithError(w, http.StatusInternalServerError, msgInternalError)
}
