package notification

// EventKind identifies a push event. The values are part of the wire
// contract with the mobile clients, which switch on the "type" field of
// the push payload.
type EventKind string

const (
	EventNewContact     EventKind = "newContact"
	EventConfirmContact EventKind = "confirmContact"
	EventDenyContact    EventKind = "denyContact"
	EventDeleteContact  EventKind = "deleteContact"
	EventMessage        EventKind = "msg"
	EventNewRoom        EventKind = "newRoom"
)

// DeviceToken is a registered push target for a member. One token per
// member: re-registering replaces the previous token.
type DeviceToken struct {
	MemberID int64  `json:"memberId"`
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
