package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"chatterAPI/internal/types/member"
	"chatterAPI/services"
	"chatterAPI/utils"

	"github.com/gorilla/mux"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth: create an account and email the
// verification link.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	var req member.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.First == "" || req.Last == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}
	if err := validateRegistration(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	email, err := h.authService.Register(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			respondWithError(w, http.StatusBadRequest, "Username exists")
		case errors.Is(err, services.ErrEmailTaken):
			respondWithError(w, http.StatusBadRequest, "Email exists")
		default:
			respondInternalError(w, err)
		}
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "email": email})
}

// VerifyEmail handles GET /verification/{code}, the link from the
// verification email. Responds with a small HTML page since it opens in a
// browser.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	code := mux.Vars(r)["code"]
	email, err := h.authService.VerifyEmail(ctx, code)
	if err != nil {
		if errors.Is(err, services.ErrCodeNotFound) {
			respondWithError(w, http.StatusBadRequest, "Code not found")
			return
		}
		respondInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, `<html><body><h2>Account verified</h2><p>%s is now verified. You can head back to the app and sign in.</p></body></html>`, email)
}

// Login handles POST /auth/login: returns a bearer token and the member's
// profile.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	var req member.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}

	token, m, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			respondWithError(w, http.StatusBadRequest, "Credentials did not match")
		case errors.Is(err, services.ErrEmailNotVerified):
			respondWithError(w, http.StatusBadRequest, "Email is not verified yet")
		default:
			respondInternalError(w, err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"token":    token,
		"memberId": m.ID,
		"username": m.Username,
	})
}

// RequestPasswordReset handles GET /auth/password/reset with the account
// email in the "email" header.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	email := r.Header.Get("email")
	if email == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}

	if err := h.authService.RequestPasswordReset(ctx, email); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			respondWithError(w, http.StatusNotFound, "Email not found")
			return
		}
		respondInternalError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"success": true, "email": email})
}

// ChangePassword handles PUT /auth/password. Ownership is proven either by
// the current password or by the emailed verification code.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := handlerContext(r)
	defer cancel()

	var req member.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	hasIdentity := (req.Email != "" && req.Password != "") || req.VerificationCode != ""
	if !hasIdentity || req.NewPassword == "" {
		respondWithError(w, http.StatusBadRequest, msgMissingInfo)
		return
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		respondWithError(w, http.StatusBadRequest, "New "+err.Error())
		return
	}

	if err := h.authService.ChangePassword(ctx, &req); err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			respondWithError(w, http.StatusNotFound, msgUserNotFound)
		case errors.Is(err, services.ErrCodeNotFound):
			respondWithError(w, http.StatusNotFound, "The reset password URL is invalid")
		case errors.Is(err, services.ErrInvalidCredentials):
			respondWithError(w, http.StatusBadRequest, "Credentials did not match")
		case errors.Is(err, services.ErrEmailNotVerified):
			respondWithError(w, http.StatusBadRequest, "Email is not verified yet")
		default:
			respondInternalError(w, err)
		}
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Changed password successful!"})
}

func validateRegistration(req *member.RegisterRequest) error {
	if err := utils.ValidateName(req.First, "First Name"); err != nil {
		return err
	}
	if err := utils.ValidateName(req.Last, "Last Name"); err != nil {
		return err
	}
	if err := utils.ValidateName(req.Username, "Username"); err != nil {
		return err
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		return err
	}
	return utils.ValidatePassword(req.Password)
}
