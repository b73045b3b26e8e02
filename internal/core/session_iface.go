package core

import "github.com/dkeye/voiceroom/internal/domain"

// SessionID identifies one signal connection: client token plus identity.
type SessionID string

// Frame is one encoded signal frame, see signal_frames.go.
type Frame []byte

// SignalConnection is the outbound half of a member's /rtc socket. TrySend
// never blocks; a full queue is reported as an error and handled by the
// room's backpressure policy. The adapter owns the socket and closes it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession is what a room stores per member: who it is and how to
// reach it over signal and media.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
	Media() MediaConnection
	UpdateSignal(SignalConnection) MemberSession
	UpdateMedia(MediaConnection) MemberSession
}
