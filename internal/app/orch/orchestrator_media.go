package orch

import (
	"context"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/app/sfu"
	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
	"github.com/dkeye/voiceroom/internal/seats"
)

func (o *Orchestrator) BindMediaHandlers(mc core.MediaConnection, sid core.SessionID) {
	mc.OnTrack(func(trackCtx context.Context, track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		o.OnTrack(trackCtx, sid, track)
	})
	mc.OnClosed(func() { o.OnMediaDisconnect(sid) })
}

func (o *Orchestrator) OnMediaDisconnect(sid core.SessionID) {
	o.cleanupMedia(sid)
}

func (o *Orchestrator) cleanupMedia(sid core.SessionID) {
	if o.Relays != nil {
		o.Relays.StopRelay(sid)
		o.Relays.DropSubscriber(sid)
	}
	if sess, ok := o.Registry.GetSession(sid); ok {
		if mc := sess.Media(); mc != nil && !mc.IsClosed() {
			mc.Close()
		}
	}
}

// OnTrack starts relaying a speaker's inbound audio. Where it is heard is
// decided by the seat metadata.
func (o *Orchestrator) OnTrack(ctx context.Context, sid core.SessionID, track *webrtc.TrackRemote) {
	if o.Relays == nil || track.Kind() != webrtc.RTPCodecTypeAudio {
		return
	}
	roomName, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		log.Info().Str("module", "sfu").Str("sid", string(sid)).Msg("OnTrack: no room for sid")
		return
	}
	o.Relays.StartRelay(ctx, sid, track)
	o.regate(roomName)
}

// OnMediaReady is called once the answer for sid was produced with slots as
// its outbound tracks.
func (o *Orchestrator) OnMediaReady(sid core.SessionID, slots []*webrtc.TrackLocalStaticRTP) {
	if o.Relays == nil {
		return
	}
	o.Relays.SetSlots(sid, slots)
	if roomName, _, ok := o.Registry.RoomOf(sid); ok {
		o.regate(roomName)
	}
}

// regate routes every seated, unmuted speaker of the room to the slot of its
// seat in every other member's connection.
func (o *Orchestrator) regate(name domain.RoomName) {
	if o.Relays == nil {
		return
	}
	room, ok := o.Rooms.GetRoom(name)
	if !ok {
		return
	}
	var states []seats.SeatState
	if md := room.Metadata(); seats.LooksLikeSeats(md) {
		parsed, err := seats.Parse(md)
		if err != nil {
			log.Debug().Err(err).Str("module", "sfu").Str("room", string(name)).Msg("unreadable seat metadata")
		}
		states = parsed
	}

	members := room.Members()
	byUser := make(map[domain.UserID]core.SessionID, len(members))
	sids := make([]core.SessionID, 0, len(members))
	for sid, m := range members {
		byUser[m.Meta().User.UserID] = sid
		sids = append(sids, sid)
	}
	plan := sfu.Plan(states, byUser)
	o.Relays.Apply(plan, sids)
	log.Debug().Str("module", "sfu").Str("room", string(name)).Int("speakers", len(plan)).Msg("relays regated")
}
