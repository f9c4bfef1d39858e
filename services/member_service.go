package services

import (
	"context"
	"errors"
	"fmt"

	"chatterAPI/internal/types/member"

	"github.com/jackc/pgx/v5"
)

// MemberService answers public profile lookups.
type MemberService struct {
	db DB
}

func NewMemberService(db DB) *MemberService {
	return &MemberService{db: db}
}

// GetByID returns a member's public profile.
func (s *MemberService) GetByID(ctx context.Context, memberID int64) (*member.Profile, error) {
	var p member.Profile
	err := s.db.QueryRow(ctx,
		`SELECT memberid, firstname, lastname, username FROM members WHERE memberid = $1`,
		memberID,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &p, nil
}

// SearchByUsername finds members whose username matches, ignoring case.
func (s *MemberService) SearchByUsername(ctx context.Context, username string) ([]member.Profile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT memberid, firstname, lastname, username FROM members WHERE lower(username) = lower($1)`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search members: %w", err)
	}
	defer rows.Close()

	results := []member.Profile{}
	for rows.Next() {
		var p member.Profile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Username); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating members: %w", err)
	}
	return results, nil
}
