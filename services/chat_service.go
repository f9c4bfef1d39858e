package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"chatterAPI/internal/types/chat"
	"chatterAPI/internal/types/member"
	"chatterAPI/internal/types/notification"

	"github.com/jackc/pgx/v5"
)

// ChatService owns group chat rooms and their membership.
type ChatService struct {
	db   DB
	sink NotificationSink
}

func NewChatService(db DB, sink NotificationSink) *ChatService {
	return &ChatService{db: db, sink: sink}
}

// CreateChat creates a room, enrolls the creator plus any listed members,
// and pushes a newRoom event to each added member.
func (s *ChatService) CreateChat(ctx context.Context, creatorID int64, name string, memberIDs []int64) (int64, error) {
	var chatID int64
	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO chats (name) VALUES ($1) RETURNING chatid`, name,
		).Scan(&chatID)
		if err != nil {
			return fmt.Errorf("failed to create chat: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO chatmembers (chatid, memberid) VALUES ($1, $2)`,
			chatID, creatorID,
		); err != nil {
			return fmt.Errorf("failed to enroll creator: %w", err)
		}

		for _, id := range memberIDs {
			if id == creatorID {
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO chatmembers (chatid, memberid) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				chatID, id,
			); err != nil {
				return fmt.Errorf("failed to enroll member %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("CreateChat: member %d created chat %d (%s)", creatorID, chatID, name)
	for _, id := range memberIDs {
		if id == creatorID {
			continue
		}
		s.notify(id, notification.EventNewRoom, map[string]any{"roomName": name, "chatId": chatID})
	}
	return chatID, nil
}

// AddMembers enrolls memberIDs in an existing chat. Adding a member who
// already joined fails the whole call, matching the client expectation
// that only un-enrolled contacts are selectable.
func (s *ChatService) AddMembers(ctx context.Context, chatID int64, memberIDs []int64) error {
	var name string
	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT name FROM chats WHERE chatid = $1`, chatID).Scan(&name)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrChatNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load chat: %w", err)
		}

		for _, id := range memberIDs {
			tag, err := tx.Exec(ctx,
				`INSERT INTO chatmembers (chatid, memberid) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				chatID, id,
			)
			if err != nil {
				return fmt.Errorf("failed to enroll member %d: %w", id, err)
			}
			if tag.RowsAffected() == 0 {
				return ErrAlreadyInChat
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range memberIDs {
		s.notify(id, notification.EventNewRoom, map[string]any{"roomName": name, "chatId": chatID})
	}
	return nil
}

// ListChats returns the chats memberID belongs to.
func (s *ChatService) ListChats(ctx context.Context, memberID int64) ([]chat.Chat, error) {
	rows, err := s.db.Query(ctx,
		`SELECT c.chatid, c.name FROM chats c
		 JOIN chatmembers cm ON cm.chatid = c.chatid
		 WHERE cm.memberid = $1
		 ORDER BY c.chatid`,
		memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	chats := []chat.Chat{}
	for rows.Next() {
		var c chat.Chat
		if err := rows.Scan(&c.ChatID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chats: %w", err)
	}
	return chats, nil
}

// ListMembers returns the public profiles of a chat's members.
func (s *ChatService) ListMembers(ctx context.Context, chatID int64) ([]member.Profile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT m.memberid, m.firstname, m.lastname, m.username FROM members m
		 JOIN chatmembers cm ON cm.memberid = m.memberid
		 WHERE cm.chatid = $1
		 ORDER BY m.username`,
		chatID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat members: %w", err)
	}
	defer rows.Close()

	members := []member.Profile{}
	for rows.Next() {
		var p member.Profile
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Username); err != nil {
			return nil, fmt.Errorf("failed to scan chat member: %w", err)
		}
		members = append(members, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat members: %w", err)
	}
	return members, nil
}

// LeaveChat removes memberID from the chat.
func (s *ChatService) LeaveChat(ctx context.Context, chatID, memberID int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM chatmembers WHERE chatid = $1 AND memberid = $2`,
		chatID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to leave chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotInChat
	}
	log.Printf("LeaveChat: member %d left chat %d", memberID, chatID)
	return nil
}

func (s *ChatService) notify(memberID int64, kind notification.EventKind, payload map[string]any) {
	if s.sink == nil {
		return
	}
	s.sink.Notify(memberID, kind, payload)
}
