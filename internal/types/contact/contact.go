package contact

import "time"

// A Relationship is the ordered pair (RequesterID, RecipientID) plus a
// verified flag: 0 while the request is pending, 1 once the recipient
// confirms. At most one row exists per unordered pair of members.
type Relationship struct {
	RequesterID int64     `json:"requesterId"`
	RecipientID int64     `json:"recipientId"`
	Verified    int       `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PendingRequest is an incoming, unconfirmed contact request as shown to
// its recipient.
type PendingRequest struct {
	Username string `json:"username"`
	MemberID int64  `json:"memberId"`
}

type AddContactRequest struct {
	Username string `json:"username"`
}
