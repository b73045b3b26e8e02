package signal

import "github.com/dkeye/voiceroom/internal/core"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, core.Envelope{Type: core.FramePong})
}
