package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
	"github.com/dkeye/voiceroom/internal/event"
)

// Sender broadcasts events stamped with the local user and room. Publish
// failures are logged and never retried.
type Sender struct {
	transport core.MediaTransport
	user      domain.Identity
	roomID    string
	log       zerolog.Logger
}

func newSender(transport core.MediaTransport, user domain.Identity, roomID string, logger zerolog.Logger) *Sender {
	return &Sender{
		transport: transport,
		user:      user,
		roomID:    roomID,
		log:       logger.With().Str("module", "session.sender").Logger(),
	}
}

func (s *Sender) SendMessage(ctx context.Context, message string) {
	s.publish(ctx, event.Event{Code: event.SendMessage, Message: message})
}

func (s *Sender) ClearChat(ctx context.Context) {
	s.publish(ctx, event.Event{Code: event.ClearChat})
}

func (s *Sender) InviteUserToTakeMic(ctx context.Context, userID domain.UserID, seatIndex int) {
	s.publish(ctx, event.Event{Code: event.InviteUserToTakeMic, UserID: userID, SeatIndex: seatIndex})
}

func (s *Sender) RequestTakeMic(ctx context.Context, seatIndex int) {
	s.publish(ctx, event.Event{Code: event.RequestTakeMic, SeatIndex: seatIndex})
}

func (s *Sender) SendGift(ctx context.Context, gift string) {
	s.publish(ctx, event.Event{Code: event.SendGift, Gift: gift})
}

// RemoveUserFromSeat tells userID it was taken off seatIndex.
func (s *Sender) RemoveUserFromSeat(ctx context.Context, seatIndex int, userID domain.UserID) {
	s.publish(ctx, event.Event{Code: event.RemoveUserFromSeat, UserID: userID, SeatIndex: seatIndex})
}

func (s *Sender) publish(ctx context.Context, e event.Event) {
	e.User = s.user
	e.RoomID = s.roomID
	data, err := event.Encode(e)
	if err != nil {
		s.log.Error().Err(err).Stringer("event", e.Code).Msg("encode event")
		return
	}
	if err := s.transport.Publish(ctx, data); err != nil {
		s.log.Warn().Err(err).Stringer("event", e.Code).Msg("publish failed")
		return
	}
	s.log.Debug().Stringer("event", e.Code).Msg("event published")
}
