package services

import (
	"context"
	"testing"
	"time"

	"chatterAPI/internal/types/member"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeMailer reports sends on channels so tests can wait for the
// fire-and-forget goroutine.
type fakeMailer struct {
	verifications chan string
	resets        chan string
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		verifications: make(chan string, 1),
		resets:        make(chan string, 1),
	}
}

func (f *fakeMailer) SendVerification(to, code string) error {
	f.verifications <- code
	return nil
}

func (f *fakeMailer) SendPasswordReset(to, code string) error {
	f.resets <- code
	return nil
}

func waitForSend(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case code := <-ch:
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("expected an email send")
		return ""
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func TestRegisterSuccess(t *testing.T) {
	mock := newMockPool(t)
	mailer := newFakeMailer()
	svc := NewAuthService(mock, mailer, []byte("secret"))

	mock.ExpectQuery(`INSERT INTO members`).
		WithArgs("Alice", "Smith", "alice", "alice@test.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"email"}).AddRow("alice@test.com"))

	email, err := svc.Register(context.Background(), &member.RegisterRequest{
		First:    "Alice",
		Last:     "Smith",
		Username: "alice",
		Email:    "alice@test.com",
		Password: "Test123!",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", email)
	assert.NotEmpty(t, waitForSend(t, mailer.verifications))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUsernameTaken(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, newFakeMailer(), []byte("secret"))

	mock.ExpectQuery(`INSERT INTO members`).
		WithArgs("Alice", "Smith", "alice", "alice@test.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "members_username_key"})

	_, err := svc.Register(context.Background(), &member.RegisterRequest{
		First: "Alice", Last: "Smith", Username: "alice",
		Email: "alice@test.com", Password: "Test123!",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegisterEmailTaken(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, newFakeMailer(), []byte("secret"))

	mock.ExpectQuery(`INSERT INTO members`).
		WithArgs("Alice", "Smith", "alice", "alice@test.com", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "members_email_key"})

	_, err := svc.Register(context.Background(), &member.RegisterRequest{
		First: "Alice", Last: "Smith", Username: "alice",
		Email: "alice@test.com", Password: "Test123!",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestVerifyEmail(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))

	mock.ExpectQuery(`UPDATE members SET verified = 1 WHERE verification_code`).
		WithArgs("code-1").
		WillReturnRows(pgxmock.NewRows([]string{"email"}).AddRow("alice@test.com"))

	email, err := svc.VerifyEmail(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "alice@test.com", email)
}

func TestVerifyEmailCodeNotFound(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))

	mock.ExpectQuery(`UPDATE members SET verified = 1 WHERE verification_code`).
		WithArgs("bogus").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.VerifyEmail(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestLoginSuccess(t *testing.T) {
	mock := newMockPool(t)
	secret := []byte("secret")
	svc := NewAuthService(mock, nil, secret)
	hash := hashPassword(t, "Test123!")

	mock.ExpectQuery(`SELECT memberid, firstname, lastname, username, email, password, verified`).
		WithArgs("alice@test.com").
		WillReturnRows(pgxmock.NewRows([]string{"memberid", "firstname", "lastname", "username", "email", "password", "verified"}).
			AddRow(int64(1), "Alice", "Smith", "alice", "alice@test.com", hash, 1))

	token, m, err := svc.Login(context.Background(), "alice@test.com", "Test123!")
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
	assert.True(t, m.Verified)

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		return secret, nil
	})
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "1", sub)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["username"])
}

func TestLoginWrongPassword(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))
	hash := hashPassword(t, "Test123!")

	mock.ExpectQuery(`SELECT memberid, firstname, lastname, username, email, password, verified`).
		WithArgs("alice@test.com").
		WillReturnRows(pgxmock.NewRows([]string{"memberid", "firstname", "lastname", "username", "email", "password", "verified"}).
			AddRow(int64(1), "Alice", "Smith", "alice", "alice@test.com", hash, 1))

	_, _, err := svc.Login(context.Background(), "alice@test.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))

	mock.ExpectQuery(`SELECT memberid, firstname, lastname, username, email, password, verified`).
		WithArgs("nobody@test.com").
		WillReturnError(pgx.ErrNoRows)

	_, _, err := svc.Login(context.Background(), "nobody@test.com", "Test123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnverified(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))
	hash := hashPassword(t, "Test123!")

	mock.ExpectQuery(`SELECT memberid, firstname, lastname, username, email, password, verified`).
		WithArgs("alice@test.com").
		WillReturnRows(pgxmock.NewRows([]string{"memberid", "firstname", "lastname", "username", "email", "password", "verified"}).
			AddRow(int64(1), "Alice", "Smith", "alice", "alice@test.com", hash, 0))

	_, _, err := svc.Login(context.Background(), "alice@test.com", "Test123!")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestRequestPasswordReset(t *testing.T) {
	mock := newMockPool(t)
	mailer := newFakeMailer()
	svc := NewAuthService(mock, mailer, []byte("secret"))

	mock.ExpectQuery(`SELECT verification_code FROM members WHERE lower`).
		WithArgs("alice@test.com").
		WillReturnRows(pgxmock.NewRows([]string{"verification_code"}).AddRow("code-1"))

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "alice@test.com"))
	assert.Equal(t, "code-1", waitForSend(t, mailer.resets))
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, newFakeMailer(), []byte("secret"))

	mock.ExpectQuery(`SELECT verification_code FROM members WHERE lower`).
		WithArgs("nobody@test.com").
		WillReturnError(pgx.ErrNoRows)

	err := svc.RequestPasswordReset(context.Background(), "nobody@test.com")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestChangePasswordWithCode(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))

	mock.ExpectQuery(`SELECT memberid, verified FROM members WHERE verification_code`).
		WithArgs("code-1").
		WillReturnRows(pgxmock.NewRows([]string{"memberid", "verified"}).AddRow(int64(1), 1))
	mock.ExpectExec(`UPDATE members SET password`).
		WithArgs(int64(1), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.ChangePassword(context.Background(), &member.ChangePasswordRequest{
		VerificationCode: "code-1",
		NewPassword:      "NewPass1!",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestChangePasswordWithCredentials(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))
	hash := hashPassword(t, "Test123!")

	mock.ExpectQuery(`SELECT memberid, password, verified FROM members WHERE lower`).
		WithArgs("alice@test.com").
		WillReturnRows(pgxmock.NewRows([]string{"memberid", "password", "verified"}).AddRow(int64(1), hash, 1))
	mock.ExpectExec(`UPDATE members SET password`).
		WithArgs(int64(1), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.ChangePassword(context.Background(), &member.ChangePasswordRequest{
		Email:       "alice@test.com",
		Password:    "Test123!",
		NewPassword: "NewPass1!",
	})
	require.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))
	hash := hashPassword(t, "Test123!")

	mock.ExpectQuery(`SELECT memberid, password, verified FROM members WHERE lower`).
		WithArgs("alice@test.com").
		WillReturnRows(pgxmock.NewRows([]string{"memberid", "password", "verified"}).AddRow(int64(1), hash, 1))

	err := svc.ChangePassword(context.Background(), &member.ChangePasswordRequest{
		Email:       "alice@test.com",
		Password:    "wrong",
		NewPassword: "NewPass1!",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePasswordCodeNotFound(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))

	mock.ExpectQuery(`SELECT memberid, verified FROM members WHERE verification_code`).
		WithArgs("bogus").
		WillReturnError(pgx.ErrNoRows)

	err := svc.ChangePassword(context.Background(), &member.ChangePasswordRequest{
		VerificationCode: "bogus",
		NewPassword:      "NewPass1!",
	})
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestChangePasswordUnverified(t *testing.T) {
	mock := newMockPool(t)
	svc := NewAuthService(mock, nil, []byte("secret"))

	mock.ExpectQuery(`SELECT memberid, verified FROM members WHERE verification_code`).
		WithArgs("code-1").
		WillReturnRows(pgxmock.NewRows([]string{"memberid", "verified"}).AddRow(int64(1), 0))

	err := svc.ChangePassword(context.Background(), &member.ChangePasswordRequest{
		VerificationCode: "code-1",
		NewPassword:      "NewPass1!",
	})
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}
