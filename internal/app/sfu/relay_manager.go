package sfu

import (
	"context"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/core"
)

// RelayManager owns one relay per speaker and the outbound slot tracks of
// every subscriber.
type RelayManager struct {
	mu     sync.RWMutex
	relays map[core.SessionID]*Relay
	slots  map[core.SessionID][]*webrtc.TrackLocalStaticRTP
}

func NewRelayManager() *RelayManager {
	return &RelayManager{
		relays: make(map[core.SessionID]*Relay),
		slots:  make(map[core.SessionID][]*webrtc.TrackLocalStaticRTP),
	}
}

// NewSlotTracks creates n Opus tracks, one per seat a subscriber can hear.
func NewSlotTracks(sid core.SessionID, n int) ([]*webrtc.TrackLocalStaticRTP, error) {
	out := make([]*webrtc.TrackLocalStaticRTP, 0, n)
	for i := range n {
		t, err := webrtc.NewTrackLocalStaticRTP(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
			fmt.Sprintf("seat-%d", i),
			"voiceroom-"+string(sid),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// StartRelay creates a new Relay for the given speaker SID and starts its loop.
func (m *RelayManager) StartRelay(ctx context.Context, sid core.SessionID, track *webrtc.TrackRemote) *Relay {
	logger := log.With().
		Str("module", "relay").
		Str("sid", string(sid)).
		Logger()

	relayCtx, cancel := context.WithCancel(ctx)
	relay := NewRelay(track, cancel)

	m.mu.Lock()
	if old, ok := m.relays[sid]; ok {
		logger.Info().Msg("replacing existing relay for sid")
		old.markAllDelete()
		if old.cancel != nil {
			old.cancel()
		}
	}
	m.relays[sid] = relay
	m.mu.Unlock()

	logger.Info().Str("track_id", track.ID()).Msg("starting relay loop")
	go relay.loop(relayCtx, &logger)
	return relay
}

// StopRelay stops a relay and removes it from the manager.
func (m *RelayManager) StopRelay(srcSID core.SessionID) {
	m.mu.Lock()
	relay, ok := m.relays[srcSID]
	if ok {
		delete(m.relays, srcSID)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	relay.markAllDelete()
	if relay.cancel != nil {
		relay.cancel()
	}
}

func (m *RelayManager) Relay(sid core.SessionID) (*Relay, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.relays[sid]
	return r, ok
}

// HasRelay reports whether a relay exists for sid.
func (m *RelayManager) HasRelay(sid core.SessionID) bool {
	_, ok := m.Relay(sid)
	return ok
}

func (m *RelayManager) SetSlots(sid core.SessionID, slots []*webrtc.TrackLocalStaticRTP) {
	m.mu.Lock()
	m.slots[sid] = slots
	m.mu.Unlock()
}

func (m *RelayManager) Slots(sid core.SessionID) []*webrtc.TrackLocalStaticRTP {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.slots[sid]
}

// DropSubscriber forgets the slots of sid and unroutes every speaker from it.
func (m *RelayManager) DropSubscriber(sid core.SessionID) {
	m.mu.Lock()
	delete(m.slots, sid)
	relays := make([]*Relay, 0, len(m.relays))
	for _, r := range m.relays {
		relays = append(relays, r)
	}
	m.mu.Unlock()
	for _, r := range relays {
		r.Unroute(sid)
	}
}

// Apply routes every speaker with a relay according to plan. Subscribers
// are the members that hear the room; a speaker never hears itself.
func (m *RelayManager) Apply(plan map[core.SessionID]Route, subscribers []core.SessionID) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for src, relay := range m.relays {
		route, seated := plan[src]
		for _, dst := range subscribers {
			if dst == src {
				continue
			}
			slots := m.slots[dst]
			if !seated || route.Slot >= len(slots) {
				relay.Unroute(dst)
				continue
			}
			relay.Route(dst, route.Slot, slots[route.Slot], route.Muted)
		}
	}
}
