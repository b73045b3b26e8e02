package domain

import "github.com/google/uuid"

type ChatMessage struct {
	ID      uuid.UUID
	RoomID  string
	Message string
	User    User
}

func NewChatMessage(roomID, message string, user User) ChatMessage {
	return ChatMessage{ID: uuid.New(), RoomID: roomID, Message: message, User: user}
}

// MicRequest is a pending request to speak, kept for moderator UIs.
type MicRequest struct {
	SeatIndex int
	User      User
}
