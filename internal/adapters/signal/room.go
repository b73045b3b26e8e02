package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/core"
)

// sendRoomState is the first frame a member gets: room, metadata and the
// roster including itself.
func (ctl *SignalWSController) sendRoomState(conn *WsSignalConn, room core.RoomService) {
	ctl.sendJSON(conn, core.RoomStateFrame{
		Type:         core.FrameRoomState,
		Room:         room.Room().Name,
		SID:          room.Room().ID,
		Metadata:     room.Metadata(),
		Participants: room.Participants(),
	})
}

func (ctl *SignalWSController) handleData(
	sid core.SessionID,
	sess core.MemberSession,
	conn *WsSignalConn,
	data []byte,
) {
	var p core.DataFrame
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("bad data payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	uid := sess.Meta().User.UserID
	if ctl.Limiter != nil && !ctl.Limiter.Allow(uid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("data rate limited")
		ctl.sendError(conn, "rate_limited")
		return
	}
	ctl.Orch.OnData(sid, p.Payload)
}
