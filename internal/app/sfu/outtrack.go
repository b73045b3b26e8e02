package sfu

import (
	"sync/atomic"

	"github.com/pion/webrtc/v4"
)

// TrackState is what a routed slot does with the speaker's packets.
type TrackState int32

const (
	TrackForward TrackState = iota
	TrackMuted
	TrackDropped
)

func (s TrackState) String() string {
	switch s {
	case TrackForward:
		return "forward"
	case TrackMuted:
		return "muted"
	case TrackDropped:
		return "dropped"
	}
	return "unknown"
}

// OutTrack is one subscriber slot a speaker is currently routed to. A
// dropped OutTrack never comes back; routing again creates a new one.
type OutTrack struct {
	Slot  int
	Track *webrtc.TrackLocalStaticRTP
	state atomic.Int32
}

func NewOutTrack(slot int, track *webrtc.TrackLocalStaticRTP) *OutTrack {
	return &OutTrack{Slot: slot, Track: track}
}

func (ot *OutTrack) State() TrackState { return TrackState(ot.state.Load()) }

// SetMuted switches between forwarding and muted unless the track was
// dropped.
func (ot *OutTrack) SetMuted(muted bool) {
	next := TrackForward
	if muted {
		next = TrackMuted
	}
	for {
		cur := ot.state.Load()
		if TrackState(cur) == TrackDropped || ot.state.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}

func (ot *OutTrack) Drop() { ot.state.Store(int32(TrackDropped)) }
