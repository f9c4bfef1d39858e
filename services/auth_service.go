package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"chatterAPI/internal/types/member"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

// Mailer delivers account emails. Sends are fire-and-forget: the service
// never fails a request because an email could not go out.
type Mailer interface {
	SendVerification(to, code string) error
	SendPasswordReset(to, code string) error
}

// AuthService owns registration, email verification, login, and the
// password flows.
type AuthService struct {
	db        DB
	mailer    Mailer
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(db DB, mailer Mailer, jwtSecret []byte) *AuthService {
	return &AuthService{
		db:        db,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  14 * 24 * time.Hour,
	}
}

// Register creates a member with a bcrypt credential and a fresh
// verification code, then emails the code. Input is validated by the
// handler before this is called.
func (s *AuthService) Register(ctx context.Context, req *member.RegisterRequest) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	code := uuid.NewString()

	var email string
	err = s.db.QueryRow(ctx,
		`INSERT INTO members (firstname, lastname, username, email, password, verification_code)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING email`,
		req.First, req.Last, req.Username, req.Email, string(hash), code,
	).Scan(&email)
	if isUniqueViolation(err, "members_username_key") {
		return "", ErrUsernameTaken
	}
	if isUniqueViolation(err, "members_email_key") {
		return "", ErrEmailTaken
	}
	if err != nil {
		return "", fmt.Errorf("failed to create member: %w", err)
	}

	s.sendEmail(func() error { return s.mailer.SendVerification(email, code) })
	return email, nil
}

// VerifyEmail marks the member holding code as verified and returns their
// email address.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) (string, error) {
	var email string
	err := s.db.QueryRow(ctx,
		`UPDATE members SET verified = 1 WHERE verification_code = $1 RETURNING email`,
		code,
	).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to verify email: %w", err)
	}
	return email, nil
}

// Login checks the credential and returns a signed token plus the member's
// profile. Unverified members cannot log in.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *member.Member, error) {
	var m member.Member
	var hash string
	var verified int
	err := s.db.QueryRow(ctx,
		`SELECT memberid, firstname, lastname, username, email, password, verified
		 FROM members WHERE lower(email) = lower($1)`,
		email,
	).Scan(&m.ID, &m.FirstName, &m.LastName, &m.Username, &m.Email, &hash, &verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load member: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	if verified == 0 {
		return "", nil, ErrEmailNotVerified
	}
	m.Verified = true

	token, err := s.issueToken(m.ID, m.Username)
	if err != nil {
		return "", nil, err
	}
	return token, &m, nil
}

// RequestPasswordReset emails the member's reset link.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	var code string
	err := s.db.QueryRow(ctx,
		`SELECT verification_code FROM members WHERE lower(email) = lower($1)`,
		email,
	).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}

	s.sendEmail(func() error { return s.mailer.SendPasswordReset(email, code) })
	return nil
}

// ChangePassword replaces the credential. The caller proves ownership with
// either the current password or the emailed verification code. The new
// password is validated by the handler.
func (s *AuthService) ChangePassword(ctx context.Context, req *member.ChangePasswordRequest) error {
	var memberID int64
	var verified int

	if req.VerificationCode != "" {
		err := s.db.QueryRow(ctx,
			`SELECT memberid, verified FROM members WHERE verification_code = $1`,
			req.VerificationCode,
		).Scan(&memberID, &verified)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCodeNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load member: %w", err)
		}
	} else {
		var hash string
		err := s.db.QueryRow(ctx,
			`SELECT memberid, password, verified FROM members WHERE lower(email) = lower($1)`,
			req.Email,
		).Scan(&memberID, &hash, &verified)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMemberNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load member: %w", err)
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			return ErrInvalidCredentials
		}
	}

	if verified == 0 {
		return ErrEmailNotVerified
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`UPDATE members SET password = $2 WHERE memberid = $1`,
		memberID, string(hash),
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *AuthService) issueToken(memberID int64, username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      strconv.FormatInt(memberID, 10),
		"username": username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) sendEmail(send func() error) {
	if s.mailer == nil {
		return
	}
	go func() {
		if err := send(); err != nil {
			log.Printf("AuthService: email delivery failed: %v", err)
		}
	}()
}
