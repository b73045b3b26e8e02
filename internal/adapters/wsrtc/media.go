package wsrtc

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog"

	"github.com/dkeye/voiceroom/internal/adapters/rtc"
	"github.com/dkeye/voiceroom/internal/core"
)

var errNoSender = errors.New("wsrtc: no audio sender")

// publisher owns the client peer connection: one sendonly microphone track
// and one recvonly transceiver per seat slot.
type publisher struct {
	pc     *webrtc.PeerConnection
	track  *webrtc.TrackLocalStaticSample
	sender *webrtc.RTPSender
	log    zerolog.Logger

	publishing atomic.Bool

	mu         sync.Mutex
	micOn      bool
	attached   bool
	negotiated bool
	onSlot     func(slot int, track *webrtc.TrackRemote)
}

func newPublisher(iceServers []string, slots int, onSlot func(int, *webrtc.TrackRemote), logger zerolog.Logger) (*publisher, error) {
	pc, err := webrtc.NewPeerConnection(rtc.WebRTCConfig(iceServers))
	if err != nil {
		return nil, err
	}
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2},
		"microphone", "voiceroom",
	)
	if err != nil {
		_ = pc.Close()
		return nil, err
	}
	tr, err := pc.AddTransceiverFromTrack(track, webrtc.RTPTransceiverInit{Direction: webrtc.RTPTransceiverDirectionSendonly})
	if err != nil {
		_ = pc.Close()
		return nil, err
	}
	p := &publisher{
		pc:       pc,
		track:    track,
		sender:   tr.Sender(),
		log:      logger,
		attached: true,
		onSlot:   onSlot,
	}
	for range slots {
		if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio, webrtc.RTPTransceiverInit{
			Direction: webrtc.RTPTransceiverDirectionRecvonly,
		}); err != nil {
			_ = pc.Close()
			return nil, err
		}
	}
	pc.OnTrack(p.handleTrack)
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		p.log.Info().Str("peer_connection_state", s.String()).Msg("Peer state")
	})
	go p.drainRTCP()
	return p, nil
}

// offer creates the local offer with all candidates gathered.
func (p *publisher) offer() (string, error) {
	offer, err := p.pc.CreateOffer(nil)
	if err != nil {
		return "", err
	}
	gatherComplete := webrtc.GatheringCompletePromise(p.pc)
	if err := p.pc.SetLocalDescription(offer); err != nil {
		return "", err
	}
	<-gatherComplete
	return p.pc.LocalDescription().SDP, nil
}

// applyAnswer completes negotiation. The track stays attached until then,
// pion only starts a sender that has a track at that point.
func (p *publisher) applyAnswer(sdp string) error {
	if err := p.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sdp}); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.negotiated = true
	return p.syncTrack()
}

func (p *publisher) addCandidate(f core.CandidateFrame) error {
	return p.pc.AddICECandidate(webrtc.ICECandidateInit{
		Candidate:     f.Candidate,
		SDPMid:        f.SDPMid,
		SDPMLineIndex: f.SDPMLineIndex,
	})
}

func (p *publisher) setPublishing(enabled bool) { p.publishing.Store(enabled) }

// setMicrophone detaches the track from the sender while the mic is off so
// nothing leaves the client even if samples keep coming.
func (p *publisher) setMicrophone(enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.micOn = enabled
	if !p.negotiated {
		return nil
	}
	return p.syncTrack()
}

func (p *publisher) syncTrack() error {
	if p.attached == p.micOn {
		return nil
	}
	if p.sender == nil {
		return errNoSender
	}
	var next webrtc.TrackLocal
	if p.micOn {
		next = p.track
	}
	if err := p.sender.ReplaceTrack(next); err != nil {
		return err
	}
	p.attached = p.micOn
	return nil
}

func (p *publisher) setOnSlot(fn func(int, *webrtc.TrackRemote)) {
	p.mu.Lock()
	p.onSlot = fn
	p.mu.Unlock()
}

func (p *publisher) writeSample(s media.Sample) error {
	p.mu.Lock()
	on := p.micOn
	p.mu.Unlock()
	if !on || !p.publishing.Load() {
		return nil
	}
	return p.track.WriteSample(s)
}

// handleTrack maps an inbound track to its slot by transceiver order; the
// microphone transceiver comes first.
func (p *publisher) handleTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
	slot := -1
	for i, tr := range p.pc.GetTransceivers() {
		if tr.Receiver() == receiver {
			slot = i - 1
			break
		}
	}
	p.mu.Lock()
	fn := p.onSlot
	p.mu.Unlock()
	p.log.Debug().Int("slot", slot).Str("track_id", track.ID()).Msg("slot track")
	if fn != nil && slot >= 0 {
		fn(slot, track)
	}
}

func (p *publisher) drainRTCP() {
	if p.sender == nil {
		return
	}
	buf := make([]byte, 1500)
	for {
		if _, _, err := p.sender.Read(buf); err != nil {
			return
		}
	}
}

func (p *publisher) close() {
	if err := p.pc.Close(); err != nil {
		p.log.Warn().Err(err).Msg("close peer connection")
	}
}
