package services

import "errors"

// Contact directory errors. Handlers translate these into the messages the
// mobile clients display, so every invalid state transition has its own
// sentinel.
var (
	ErrUnknownUser = errors.New("username does not exist")
	ErrSelfContact = errors.New("member cannot add themself as a contact")

	// Duplicate-relationship variants: at most one relationship row may
	// exist per unordered pair, and the caller is told which state it is in.
	ErrAlreadyContacts         = errors.New("members are already contacts")
	ErrRequestAlreadySent      = errors.New("contact request already sent")
	ErrRequestPendingFromOther = errors.New("open contact request from the other member")

	ErrRequestNotFound     = errors.New("contact request not found")
	ErrNotAContact         = errors.New("member is not a contact")
	ErrContactNotConfirmed = errors.New("contact is not confirmed")
)

// Member and auth errors.
var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrUsernameTaken      = errors.New("username exists")
	ErrEmailTaken         = errors.New("email exists")
	ErrInvalidCredentials = errors.New("credentials did not match")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrCodeNotFound       = errors.New("verification code not found")
)

// Chat and message errors.
var (
	ErrChatNotFound  = errors.New("chat not found")
	ErrNotInChat     = errors.New("member is not in the chat")
	ErrAlreadyInChat = errors.New("member already joined the chat")
)
