package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatterAPI/middleware"
	"chatterAPI/services"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContactHandler(t *testing.T) (*ContactHandler, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewContactHandler(
		services.NewContactService(mock, nil),
		services.NewMemberService(mock),
	), mock
}

// authedRequest builds a request carrying the authenticated member id the
// way the auth middleware would.
func authedRequest(method, target string, body string, memberID int64) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), middleware.MemberIDKey, memberID)
	return req.WithContext(ctx)
}

func TestRequestContactHandler(t *testing.T) {
	h, mock := newContactHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT memberid FROM members WHERE lower`).
		WithArgs("sam").
		WillReturnRows(pgxmock.NewRows([]string{"memberid"}).AddRow(int64(2)))
	mock.ExpectQuery(`SELECT memberid_a, verified FROM contacts`).
		WithArgs(int64(1), int64(2)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(`INSERT INTO contacts`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT username FROM members WHERE memberid`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"username"}).AddRow("alice"))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	h.RequestContact(rec, authedRequest(http.MethodPost, "/api/v1/contactrequests", `{"username": "sam"}`, 1))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestContactHandlerMissingUsername(t *testing.T) {
	h, _ := newContactHandler(t)

	rec := httptest.NewRecorder()
	h.RequestContact(rec, authedRequest(http.MethodPost, "/api/v1/contactrequests", `{}`, 1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message": "Missing required information"}`, rec.Body.String())
}

func TestRequestContactHandlerUnknownUser(t *testing.T) {
	h, mock := newContactHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT memberid FROM members WHERE lower`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	rec := httptest.NewRecorder()
	h.RequestContact(rec, authedRequest(http.MethodPost, "/api/v1/contactrequests", `{"username": "nobody"}`, 1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message": "Username does not exist."}`, rec.Body.String())
}

func TestRequestContactHandlerUnauthenticated(t *testing.T) {
	h, _ := newContactHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contactrequests", strings.NewReader(`{"username": "sam"}`))
	h.RequestContact(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmContactHandlerMalformedID(t *testing.T) {
	h, _ := newContactHandler(t)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/v1/contactrequests/abc", "", 2)
	req = mux.SetURLVars(req, map[string]string{"memberId": "abc"})
	h.ConfirmContact(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message": "Malformed parameter. memberId must be a number"}`, rec.Body.String())
}

func TestConfirmContactHandlerNotARequest(t *testing.T) {
	h, mock := newContactHandler(t)

	mock.ExpectQuery(`SELECT username FROM members WHERE memberid`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"username"}).AddRow("sam"))
	mock.ExpectExec(`UPDATE contacts SET verified = 1`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodPost, "/api/v1/contactrequests/1", "", 2)
	req = mux.SetURLVars(req, map[string]string{"memberId": "1"})
	h.ConfirmContact(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message": "Contact request not found"}`, rec.Body.String())
}

// An empty contact list is a successful, empty response.
func TestListContactsHandlerEmpty(t *testing.T) {
	h, mock := newContactHandler(t)

	mock.ExpectQuery(`SELECT m.memberid, m.firstname, m.lastname, m.username`).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"memberid", "firstname", "lastname", "username"}))

	rec := httptest.NewRecorder()
	h.ListContacts(rec, authedRequest(http.MethodGet, "/api/v1/contacts", "", 1))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"contacts": []}`, rec.Body.String())
}

func TestGetMemberHandlerNotFound(t *testing.T) {
	h, mock := newContactHandler(t)

	mock.ExpectQuery(`SELECT memberid, firstname, lastname, username FROM members WHERE memberid`).
		WithArgs(int64(99)).
		WillReturnError(pgx.ErrNoRows)

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/v1/members/99", "", 1)
	req = mux.SetURLVars(req, map[string]string{"memberId": "99"})
	h.GetMember(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message": "User not found"}`, rec.Body.String())
}

func TestSearchHandlerNoMatch(t *testing.T) {
	h, mock := newContactHandler(t)

	mock.ExpectQuery(`SELECT memberid, firstname, lastname, username FROM members WHERE lower`).
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows([]string{"memberid", "firstname", "lastname", "username"}))

	rec := httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/v1/contacts/search/nobody", "", 1)
	req = mux.SetURLVars(req, map[string]string{"username": "nobody"})
	h.Search(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message": "No matches found"}`, rec.Body.String())
}
