package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
)

// Join moves sid into roomName, creating the room on demand, and announces
// it to the members already there.
func (o *Orchestrator) Join(sid core.SessionID, roomName domain.RoomName) (core.RoomService, bool) {
	if current, _, ok := o.Registry.RoomOf(sid); ok {
		o.KickBySID(sid)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(current)).Msg("kicked from room")
	}
	session, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, false
	}
	room := o.Rooms.GetOrCreate(roomName)
	room.AddMember(sid, session)
	o.Registry.UpdateRoom(sid, roomName)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomName)).Msg("added to room")

	o.broadcast(room, sid, core.ParticipantJoinedFrame{
		Type:        core.FrameParticipantJoined,
		Participant: session.Meta().Participant(),
	})
	return room, true
}

// KickBySID removes sid from its room and tears its media down. The signal
// connection stays open.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	o.cleanupMedia(sid)
	o.cleanupMembership(sid)
}

func (o *Orchestrator) cleanupMembership(sid core.SessionID) {
	roomName, sess, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}
	if o.Policy != nil {
		o.Policy.Forget(sess)
	}
	room, ok := o.Rooms.GetRoom(roomName)
	o.Registry.RemoveRoom(sid)
	if !ok {
		return
	}
	room.RemoveMember(sid)
	o.broadcast(room, sid, core.ParticipantLeftFrame{
		Type:     core.FrameParticipantLeft,
		Identity: sess.Meta().User.UserID,
	})
}

// EvictRoom kicks every member of name and drops the room.
func (o *Orchestrator) EvictRoom(name domain.RoomName) {
	for _, snap := range o.Registry.MembersOfRoom(name) {
		o.KickBySID(snap.SID)
	}
	o.Rooms.StopRoom(name)
}
