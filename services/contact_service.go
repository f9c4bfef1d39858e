package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"chatterAPI/internal/types/contact"
	"chatterAPI/internal/types/member"
	"chatterAPI/internal/types/notification"

	"github.com/jackc/pgx/v5"
)

// NotificationSink receives contact and chat lifecycle events. Delivery is
// best-effort and asynchronous: Notify never blocks and its outcome never
// affects the state change that triggered it.
type NotificationSink interface {
	Notify(memberID int64, kind notification.EventKind, payload map[string]any)
}

// ContactService owns the lifecycle of pairwise contact relationships:
// request, confirm, deny, remove, and the directory queries. Every
// multi-step mutation runs in a single transaction, and the contacts table
// carries a unique index on the unordered pair, so concurrent requests for
// the same pair leave at most one row.
type ContactService struct {
	db   DB
	sink NotificationSink
}

func NewContactService(db DB, sink NotificationSink) *ContactService {
	return &ContactService{db: db, sink: sink}
}

const contactPairQuery = `
	SELECT memberid_a, verified FROM contacts
	WHERE (memberid_a = $1 AND memberid_b = $2) OR (memberid_a = $2 AND memberid_b = $1)
	`

// RequestContact creates a pending relationship from requesterID to the
// member named by recipientUsername and notifies the recipient.
func (s *ContactService) RequestContact(ctx context.Context, requesterID int64, recipientUsername string) error {
	var recipientID int64
	var requesterName string

	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT memberid FROM members WHERE lower(username) = lower($1)`,
			recipientUsername,
		).Scan(&recipientID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUnknownUser
		}
		if err != nil {
			return fmt.Errorf("failed to resolve username: %w", err)
		}

		if recipientID == requesterID {
			return ErrSelfContact
		}

		var existingRequester int64
		var verified int
		err = tx.QueryRow(ctx, contactPairQuery, requesterID, recipientID).Scan(&existingRequester, &verified)
		switch {
		case err == nil:
			if verified == 1 {
				return ErrAlreadyContacts
			}
			if existingRequester == requesterID {
				return ErrRequestAlreadySent
			}
			return ErrRequestPendingFromOther
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("failed to check existing relationship: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO contacts (memberid_a, memberid_b, verified) VALUES ($1, $2, 0)`,
			requesterID, recipientID,
		)
		if isUniqueViolation(err, "") {
			// A concurrent request for the same pair won the insert.
			return ErrRequestAlreadySent
		}
		if err != nil {
			return fmt.Errorf("failed to insert relationship: %w", err)
		}

		err = tx.QueryRow(ctx,
			`SELECT username FROM members WHERE memberid = $1`, requesterID,
		).Scan(&requesterName)
		if err != nil {
			return fmt.Errorf("failed to load requester: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("RequestContact: member %d requested contact with member %d", requesterID, recipientID)
	s.notify(recipientID, notification.EventNewContact, map[string]any{"username": requesterName})
	return nil
}

// ConfirmContact accepts the pending request from requesterID. Only the
// recipient of the request can confirm it; a missing pending row reports
// ErrRequestNotFound.
func (s *ContactService) ConfirmContact(ctx context.Context, confirmerID, requesterID int64) error {
	var confirmerName string
	err := s.db.QueryRow(ctx,
		`SELECT username FROM members WHERE memberid = $1`, confirmerID,
	).Scan(&confirmerName)
	if err != nil {
		return fmt.Errorf("failed to load confirmer: %w", err)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE contacts SET verified = 1 WHERE memberid_a = $1 AND memberid_b = $2 AND verified = 0`,
		requesterID, confirmerID,
	)
	if err != nil {
		return fmt.Errorf("failed to confirm relationship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	log.Printf("ConfirmContact: member %d confirmed request from member %d", confirmerID, requesterID)
	s.notify(requesterID, notification.EventConfirmContact, map[string]any{"username": confirmerName})
	return nil
}

// DenyContact deletes the pending request from requesterID to denierID.
func (s *ContactService) DenyContact(ctx context.Context, denierID, requesterID int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM contacts WHERE memberid_a = $1 AND memberid_b = $2 AND verified = 0`,
		requesterID, denierID,
	)
	if err != nil {
		return fmt.Errorf("failed to deny relationship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	log.Printf("DenyContact: member %d denied request from member %d", denierID, requesterID)
	s.notify(requesterID, notification.EventDenyContact, map[string]any{"userId": denierID})
	return nil
}

// RemoveContact deletes the relationship between the unordered pair
// {callerID, otherID}, whether pending or confirmed.
func (s *ContactService) RemoveContact(ctx context.Context, callerID, otherID int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM contacts WHERE (memberid_a = $1 AND memberid_b = $2) OR (memberid_a = $2 AND memberid_b = $1)`,
		callerID, otherID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove relationship: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAContact
	}

	log.Printf("RemoveContact: member %d removed contact %d", callerID, otherID)
	s.notify(otherID, notification.EventDeleteContact, map[string]any{"userId": callerID})
	return nil
}

// ListConfirmedContacts returns the confirmed contacts of memberID in
// either direction of the relationship. An empty directory yields an empty
// slice, not an error.
func (s *ContactService) ListConfirmedContacts(ctx context.Context, memberID int64) ([]member.Profile, error) {
	query := `
	SELECT m.memberid, m.firstname, m.lastname, m.username
	FROM members m
	WHERE m.memberid IN (
		SELECT memberid_b FROM contacts WHERE memberid_a = $1 AND verified = 1
		UNION
		SELECT memberid_a FROM contacts WHERE memberid_b = $1 AND verified = 1
	)
	ORDER BY m.username
	`

	rows, err := s.db.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []member.Profile{}
	for rows.Next() {
		var p member.Profile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Username); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}
	return contacts, nil
}

// ListPendingIncoming returns the members with an open request to memberID.
func (s *ContactService) ListPendingIncoming(ctx context.Context, memberID int64) ([]contact.PendingRequest, error) {
	query := `
	SELECT m.username, m.memberid
	FROM members m
	JOIN contacts c ON c.memberid_a = m.memberid
	WHERE c.memberid_b = $1 AND c.verified = 0
	ORDER BY m.username
	`

	rows, err := s.db.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact requests: %w", err)
	}
	defer rows.Close()

	requests := []contact.PendingRequest{}
	for rows.Next() {
		var r contact.PendingRequest
		if err := rows.Scan(&r.Username, &r.MemberID); err != nil {
			return nil, fmt.Errorf("failed to scan contact request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact requests: %w", err)
	}
	return requests, nil
}

// GetContact returns the profile of a confirmed contact of callerID.
func (s *ContactService) GetContact(ctx context.Context, callerID, otherID int64) (*member.Profile, error) {
	var existingRequester int64
	var verified int
	err := s.db.QueryRow(ctx, contactPairQuery, callerID, otherID).Scan(&existingRequester, &verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotAContact
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check relationship: %w", err)
	}
	if verified == 0 {
		return nil, ErrContactNotConfirmed
	}

	var p member.Profile
	err = s.db.QueryRow(ctx,
		`SELECT memberid, firstname, lastname, username FROM members WHERE memberid = $1`, otherID,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	return &p, nil
}

func (s *ContactService) notify(memberID int64, kind notification.EventKind, payload map[string]any) {
	if s.sink == nil {
		return
	}
	s.sink.Notify(memberID, kind, payload)
}
