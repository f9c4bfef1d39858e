package member

import "time"

type Member struct {
	ID        int64     `json:"memberId"`
	FirstName string    `json:"first"`
	LastName  string    `json:"last"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile is the subset of Member returned to other members.
type Profile struct {
	ID        int64  `json:"memberId"`
	FirstName string `json:"first"`
	LastName  string `json:"last"`
	Username  string `json:"username"`
}

type RegisterRequest struct {
	First    string `json:"first"`
	Last     string `json:"last"`
	Username string `json:"user"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	NewPassword      string `json:"newPassword"`
	VerificationCode string `json:"verificationCode"`
}
