//go:generate go run go.uber.org/mock/mockgen -source=sdk_iface.go -destination=../mocks/mock_core.go -package=mocks
package core

import (
	"context"

	"github.com/dkeye/voiceroom/internal/domain"
)

// RoomBackend is the REST side of a room: creation, join tokens and the
// shared metadata blob.
type RoomBackend interface {
	CreateRoom(ctx context.Context, roomName string) (domain.CreatedRoom, error)
	UpdateRoomMetadata(ctx context.Context, roomID, metadata string) error
	JoinToken(ctx context.Context, identity, roomID string) (domain.JoinToken, error)
}

// TransportListener receives room level notifications from a MediaTransport.
// Callbacks may run on the transport's goroutines.
type TransportListener interface {
	OnMetadataChanged(metadata string)
	OnDataReceived(data []byte, senderID string)
}

// MediaTransport is the real-time connection to a room: data channel,
// local microphone and participant roster.
type MediaTransport interface {
	Connect(ctx context.Context, url, token string) error
	Disconnect(ctx context.Context) error
	Publish(ctx context.Context, data []byte) error
	// SetAudioPublishing starts or stops sending the local audio track.
	SetAudioPublishing(ctx context.Context, enabled bool) error
	SetMicrophone(ctx context.Context, enabled bool) error
	SetCamera(ctx context.Context, enabled bool) error
	Metadata() string
	Participants() []domain.Participant
	// SetListener replaces the current listener; nil unregisters.
	SetListener(l TransportListener)
}
