package signal

import (
	"context"
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/adapters/rtc"
	"github.com/dkeye/voiceroom/internal/app/sfu"
	"github.com/dkeye/voiceroom/internal/core"
)

func (ctl *SignalWSController) sendCandidate(c *WsSignalConn, ci webrtc.ICECandidateInit) {
	ctl.sendJSON(c, core.CandidateFrame{
		Type:          core.FrameCandidate,
		Candidate:     ci.Candidate,
		SDPMid:        ci.SDPMid,
		SDPMLineIndex: ci.SDPMLineIndex,
	})
}

func (ctl *SignalWSController) handleOffer(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	var p core.SDPFrame
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad offer payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	sess, ok := ctl.Orch.Registry.GetSession(sid)
	if !ok {
		return
	}
	if old := sess.Media(); old != nil && !old.IsClosed() {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("offer renegotiation not supported")
		ctl.sendError(conn, "media_already_negotiated")
		return
	}

	slotCount, err := rtc.CountRecvOnlyAudio(p.SDP)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("unreadable offer sdp")
		ctl.sendError(conn, "bad_sdp")
		return
	}
	slots, err := sfu.NewSlotTracks(sid, slotCount)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("slot tracks")
		return
	}

	wc, err := rtc.NewWebRTCConnection(ctl.opts.RTC, sid)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("webrtc new pc")
		return
	}
	wc.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		ctl.sendCandidate(conn, ci)
	})
	ctl.Orch.BindMediaHandlers(wc, sid)

	if err = wc.Start(context.Background()); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("webrtc start")
		wc.Close()
		return
	}

	answer, err := wc.Answer(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: p.SDP}, slots)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("webrtc answer")
		ctl.sendError(conn, "bad_offer")
		wc.Close()
		return
	}

	sess.UpdateMedia(wc)
	ctl.Orch.OnMediaReady(sid, slots)

	ctl.sendJSON(conn, core.SDPFrame{Type: core.FrameAnswer, SDP: answer.SDP})
}

func (ctl *SignalWSController) handleCandidate(sid core.SessionID, data []byte) {
	var p core.CandidateFrame
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}

	sess, ok := ctl.Orch.Registry.GetSession(sid)
	if !ok {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("candidate: no session for")
		return
	}
	mc := sess.Media()
	if mc == nil {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("candidate: no media connection for")
		return
	}
	cand := webrtc.ICECandidateInit{
		Candidate:     p.Candidate,
		SDPMid:        p.SDPMid,
		SDPMLineIndex: p.SDPMLineIndex,
	}
	if err := mc.AddICECandidate(cand); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("add ice candidate")
	}
}
