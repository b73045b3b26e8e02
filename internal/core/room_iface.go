package core

import (
	"github.com/dkeye/voiceroom/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// RoomService is the core-facing API of a room.
// It owns the membership set and the metadata blob but never touches
// transport resources.
type RoomService interface {
	Room() *domain.Room
	Metadata() string
	SetMetadata(metadata string)
	MemberCount() int
	// Participants returns the roster ordered by join time.
	Participants() []domain.Participant
	Members() map[SessionID]MemberSession

	AddMember(sid SessionID, ms MemberSession)
	RemoveMember(sid SessionID)
	// Broadcast sends data to every member except from. An empty from
	// reaches everyone.
	Broadcast(from SessionID, data Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID   `json:"sid"`
	Name        domain.RoomName `json:"name"`
	MemberCount int             `json:"numParticipants"`
}

type RoomManager interface {
	CreateRoom(name domain.RoomName) RoomService
	GetOrCreate(name domain.RoomName) RoomService
	GetRoom(name domain.RoomName) (RoomService, bool)
	List() []RoomInfo
	StopRoom(name domain.RoomName)
}
