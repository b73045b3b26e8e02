package domain

import "time"

type (
	RoomName string
	RoomID   string
)

type Room struct {
	ID   RoomID
	Name RoomName
}

// CreatedRoom is what the backend reports after creating a room.
type CreatedRoom struct {
	SID  string
	Name RoomName
}

// JoinToken grants access to the media transport for one room.
type JoinToken struct {
	RoomName RoomName
	Token    string
}

// Participant is a roster entry reported by the media transport.
type Participant struct {
	Identity UserID    `json:"identity"`
	Name     string    `json:"name,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}
