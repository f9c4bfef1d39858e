package services

import (
	"context"
	"errors"
	"fmt"

	"chatterAPI/internal/types/chat"
	"chatterAPI/internal/types/notification"

	"github.com/jackc/pgx/v5"
)

// MessageService stores chat messages and fans out push notifications to
// the other members of the room.
type MessageService struct {
	db   DB
	sink NotificationSink
}

func NewMessageService(db DB, sink NotificationSink) *MessageService {
	return &MessageService{db: db, sink: sink}
}

// Send stores a message from senderID in chatID. The sender must be
// enrolled in the chat; the enrollment check and the insert share one
// transaction.
func (s *MessageService) Send(ctx context.Context, chatID, senderID int64, text string) (*chat.Message, error) {
	msg := &chat.Message{ChatID: chatID, MemberID: senderID, Message: text}
	var recipients []int64

	err := withTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`SELECT m.username FROM members m
			 JOIN chatmembers cm ON cm.memberid = m.memberid
			 WHERE cm.chatid = $1 AND cm.memberid = $2`,
			chatID, senderID,
		).Scan(&msg.Username)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotInChat
		}
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO messages (chatid, memberid, message) VALUES ($1, $2, $3)
			 RETURNING messageid, timestamp`,
			chatID, senderID, text,
		).Scan(&msg.MessageID, &msg.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}

		rows, err := tx.Query(ctx,
			`SELECT memberid FROM chatmembers WHERE chatid = $1 AND memberid <> $2`,
			chatID, senderID,
		)
		if err != nil {
			return fmt.Errorf("failed to list recipients: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("failed to scan recipient: %w", err)
			}
			recipients = append(recipients, id)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	for _, id := range recipients {
		s.notify(id, notification.EventMessage, map[string]any{
			"chatid":   chatID,
			"message":  text,
			"username": msg.Username,
		})
	}
	return msg, nil
}

// Recent returns the newest messages in the chat, newest first.
func (s *MessageService) Recent(ctx context.Context, chatID int64, limit int) ([]chat.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT m.messageid, m.chatid, m.memberid, u.username, m.message, m.timestamp
		 FROM messages m
		 JOIN members u ON u.memberid = m.memberid
		 WHERE m.chatid = $1
		 ORDER BY m.messageid DESC
		 LIMIT $2`,
		chatID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return scanMessages(rows)
}

// Before returns messages older than beforeID, for pagination.
func (s *MessageService) Before(ctx context.Context, chatID, beforeID int64, limit int) ([]chat.Message, error) {
	rows, err := s.db.Query(ctx,
		`SELECT m.messageid, m.chatid, m.memberid, u.username, m.message, m.timestamp
		 FROM messages m
		 JOIN members u ON u.memberid = m.memberid
		 WHERE m.chatid = $1 AND m.messageid < $2
		 ORDER BY m.messageid DESC
		 LIMIT $3`,
		chatID, beforeID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]chat.Message, error) {
	defer rows.Close()
	messages := []chat.Message{}
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.MessageID, &m.ChatID, &m.MemberID, &m.Username, &m.Message, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

func (s *MessageService) notify(memberID int64, kind notification.EventKind, payload map[string]any) {
	if s.sink == nil {
		return
	}
	s.sink.Notify(memberID, kind, payload)
}
