package sfu

import (
	"context"
	"maps"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/dkeye/voiceroom/internal/core"
)

// Relay forwards one speaker's audio to the slots it is routed to.
type Relay struct {
	Src *webrtc.TrackRemote

	mu        sync.RWMutex
	outTracks map[core.SessionID]*OutTrack

	cancel context.CancelFunc
}

func NewRelay(src *webrtc.TrackRemote, cancel context.CancelFunc) *Relay {
	return &Relay{
		Src:       src,
		outTracks: make(map[core.SessionID]*OutTrack),
		cancel:    cancel,
	}
}

// loop reads RTP packets from the source track and forwards them to all OutTracks.
func (r *Relay) loop(ctx context.Context, logger *zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("relay ctx done, marking all out tracks for delete")
			r.markAllDelete()
			return
		default:
		}
		pkt, _, err := r.Src.ReadRTP()
		if err != nil {
			logger.Info().Err(err).Msg("relay source ended")
			r.markAllDelete()
			return
		}
		r.forward(pkt, logger)
	}
}

func (r *Relay) forward(pkt *rtp.Packet, logger *zerolog.Logger) {
	r.mu.RLock()
	snapshot := maps.Clone(r.outTracks)
	r.mu.RUnlock()

	var dirty []core.SessionID
	for dstSID, ot := range snapshot {
		switch ot.State() {
		case TrackDropped:
			dirty = append(dirty, dstSID)
		case TrackMuted:
		case TrackForward:
			if err := ot.Track.WriteRTP(pkt); err != nil {
				logger.Warn().
					Err(err).
					Str("dst_sid", string(dstSID)).
					Int("slot", ot.Slot).
					Msg("relay write failed, dropping slot route")
				ot.Drop()
				dirty = append(dirty, dstSID)
			}
		}
	}

	if len(dirty) > 0 {
		r.cleanupDeleted(snapshot, dirty)
	}
}

// cleanupDeleted removes the given entries unless they were re-routed in
// the meantime.
func (r *Relay) cleanupDeleted(seen map[core.SessionID]*OutTrack, dirty []core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sid := range dirty {
		if r.outTracks[sid] == seen[sid] {
			delete(r.outTracks, sid)
		}
	}
}

func (r *Relay) markAllDelete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ot := range r.outTracks {
		ot.Drop()
	}
}

// Route points dst at slot. A route to the same slot only has its state
// updated.
func (r *Relay) Route(dst core.SessionID, slot int, track *webrtc.TrackLocalStaticRTP, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ot, ok := r.outTracks[dst]
	if !ok || ot.Slot != slot || ot.Track != track || ot.State() == TrackDropped {
		if ok {
			ot.Drop()
		}
		ot = NewOutTrack(slot, track)
		r.outTracks[dst] = ot
	}
	ot.SetMuted(muted)
}

func (r *Relay) Unroute(dst core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ot, ok := r.outTracks[dst]; ok {
		ot.Drop()
		delete(r.outTracks, dst)
	}
}

// Routes reports the current slot and state per subscriber.
func (r *Relay) Routes() map[core.SessionID]*OutTrack {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.outTracks)
}
