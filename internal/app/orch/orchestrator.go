package orch

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/voiceroom/internal/app"
	"github.com/dkeye/voiceroom/internal/app/sfu"
	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
)

var ErrRoomNotFound = errors.New("room not found")

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
	Relays   *sfu.RelayManager
}

// OnData relays a data-channel payload of sid to its room mates. The
// sender never receives its own payload.
func (o *Orchestrator) OnData(sid core.SessionID, payload []byte) {
	roomName, sess, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}
	room, ok := o.Rooms.GetRoom(roomName)
	if !ok {
		return
	}
	frame, err := core.EncodeFrame(core.DataFrame{
		Type:    core.FrameData,
		From:    string(sess.Meta().User.UserID),
		Payload: payload,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode data frame")
		return
	}
	o.handleDropped(room, room.Broadcast(sid, frame))
}

// UpdateMetadata replaces the room metadata, pushes it to every member and
// re-gates the audio relays.
func (o *Orchestrator) UpdateMetadata(name domain.RoomName, metadata string) error {
	room, ok := o.Rooms.GetRoom(name)
	if !ok {
		return ErrRoomNotFound
	}
	room.SetMetadata(metadata)

	frame, err := core.EncodeFrame(core.MetadataFrame{Type: core.FrameMetadata, Metadata: metadata})
	if err != nil {
		return err
	}

	var wg conc.WaitGroup
	members := room.Members()
	for sid, m := range members {
		wg.Go(func() {
			sc := m.Signal()
			if sc == nil {
				return
			}
			if err := sc.TrySend(frame); err != nil {
				log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("metadata push dropped")
			}
		})
	}
	wg.Go(func() { o.regate(name) })
	wg.Wait()

	log.Info().Str("module", "orch").Str("room", string(name)).Int("members", len(members)).Msg("metadata updated")
	return nil
}

func (o *Orchestrator) handleDropped(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			for _, snap := range o.Registry.MembersOfRoom(room.Room().Name) {
				if snap.Session == slow {
					log.Warn().Str("module", "orch").Str("sid", string(snap.SID)).Msg("kicking slow consumer")
					o.Registry.Cancel(snap.SID)
				}
			}
		case app.DropFrame, app.NoAction:
		}
	}
}

func (o *Orchestrator) broadcast(room core.RoomService, from core.SessionID, v any) {
	frame, err := core.EncodeFrame(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode frame")
		return
	}
	o.handleDropped(room, room.Broadcast(from, frame))
}
