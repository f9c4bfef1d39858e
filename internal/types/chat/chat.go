package chat

import "time"

type Chat struct {
	ChatID int64  `json:"chatId"`
	Name   string `json:"name"`
}

type Message struct {
	MessageID int64     `json:"messageId"`
	ChatID    int64     `json:"chatId"`
	MemberID  int64     `json:"memberId"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type CreateChatRequest struct {
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"memberIds"`
}

type AddMembersRequest struct {
	MemberIDs []int64 `json:"memberIds"`
}

type SendMessageRequest struct {
	ChatID  int64  `json:"chatId"`
	Message string `json:"message"`
}
