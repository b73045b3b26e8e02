package session

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dkeye/voiceroom/internal/domain"
	"github.com/dkeye/voiceroom/internal/event"
)

// micControl is what the receiver needs to take the local user off the mic.
type micControl interface {
	dropMic(ctx context.Context)
}

// Receiver is the single decode point for data-channel payloads. It only
// reacts locally and never publishes anything back.
type Receiver struct {
	ctx   context.Context
	local domain.UserID
	chat  *chatLog
	mic   micControl
	out   *listeners
	log   zerolog.Logger
}

func newReceiver(ctx context.Context, local domain.UserID, chat *chatLog, mic micControl, out *listeners, logger zerolog.Logger) *Receiver {
	return &Receiver{
		ctx:   ctx,
		local: local,
		chat:  chat,
		mic:   mic,
		out:   out,
		log:   logger.With().Str("module", "session.receiver").Logger(),
	}
}

// Handle decodes data and dispatches it by event code. Malformed payloads
// are dropped.
func (r *Receiver) Handle(data []byte, senderID string) {
	e, err := event.Decode(data)
	if err != nil {
		r.log.Debug().Err(err).Str("sender", senderID).Msg("dropping payload")
		return
	}
	r.log.Debug().Stringer("event", e.Code).Str("from", string(e.User.UserID)).Msg("event received")

	switch e.Code {
	case event.SendMessage:
		user := domain.NewUser(e.User, e.RoomID)
		msgs := r.chat.append(domain.NewChatMessage(e.RoomID, e.Message, *user))
		r.out.each(func(l Listener) { l.OnChatChanged(msgs) })
	case event.ClearChat:
		r.chat.clear()
		r.out.each(func(l Listener) { l.OnChatChanged(nil) })
	case event.InviteUserToTakeMic:
		if e.UserID == r.local {
			r.out.each(func(l Listener) { l.OnMicInviteReceived(e.SeatIndex) })
		}
	case event.RequestTakeMic:
		reqs := r.chat.addRequest(domain.MicRequest{SeatIndex: e.SeatIndex, User: *domain.NewUser(e.User, e.RoomID)})
		r.out.each(func(l Listener) { l.OnMicRequestsChanged(reqs) })
	case event.RemoveUserFromSeat:
		if e.UserID == r.local {
			r.mic.dropMic(r.ctx)
		}
	case event.SendGift:
		r.out.each(func(l Listener) { l.OnGiftReceived(e.User, e.Gift) })
	case event.LeaveSeat:
	default:
	}
}
