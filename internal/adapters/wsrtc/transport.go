// Package wsrtc is the client MediaTransport: a websocket to the room
// server's /rtc endpoint for the data channel and room notifications, plus
// an optional pion peer connection for the microphone.
package wsrtc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
)

var (
	ErrNotConnected      = errors.New("wsrtc: not connected")
	ErrAlreadyConnected  = errors.New("wsrtc: already connected")
	ErrCameraUnsupported = errors.New("wsrtc: camera not supported")
	ErrBackpressure      = errors.New("backpressure")
	ErrNoRoomState       = errors.New("wsrtc: no room state from server")
)

const (
	writeWait        = 5 * time.Second
	defaultHandshake = 10 * time.Second
	sendQueue        = 64
)

type Options struct {
	// EnableMedia negotiates a peer connection for the microphone.
	EnableMedia bool
	// RecvSlots is how many seats' audio the client asks to receive.
	RecvSlots  int
	ICEServers []string
	Dialer     *websocket.Dialer
	// HandshakeTimeout bounds the wait for the server's room state.
	HandshakeTimeout time.Duration
	Logger           *zerolog.Logger
}

type Transport struct {
	opts Options
	log  zerolog.Logger

	mu           sync.RWMutex
	conn         *websocket.Conn
	send         chan []byte
	cancel       context.CancelFunc
	done         chan struct{}
	ready        chan struct{}
	readyOnce    *sync.Once
	metadata     string
	participants map[domain.UserID]domain.Participant
	listener     core.TransportListener
	media        *publisher

	publishing bool
	micOn      bool
	onSlot     func(slot int, track *webrtc.TrackRemote)
}

func New(opts Options) *Transport {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaultHandshake
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	return &Transport{
		opts:         opts,
		log:          logger.With().Str("module", "wsrtc").Logger(),
		participants: make(map[domain.UserID]domain.Participant),
	}
}

// Connect dials rawURL with token and returns once the server sent the room
// state.
func (t *Transport) Connect(ctx context.Context, rawURL, token string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("signal url: %w", err)
	}
	q := u.Query()
	q.Set("access_token", token)
	u.RawQuery = q.Encode()

	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		return ErrAlreadyConnected
	}
	t.mu.Unlock()

	ws, _, err := t.opts.Dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial signal: %w", err)
	}

	pumpCtx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		cancel()
		_ = ws.Close()
		return ErrAlreadyConnected
	}
	t.conn = ws
	t.send = make(chan []byte, sendQueue)
	t.cancel = cancel
	t.done = make(chan struct{})
	t.ready = make(chan struct{})
	t.readyOnce = &sync.Once{}
	t.metadata = ""
	clear(t.participants)
	send, done, ready := t.send, t.done, t.ready
	t.mu.Unlock()

	go t.writePump(pumpCtx, ws, send)
	go t.readPump(ws, done)

	timer := time.NewTimer(t.opts.HandshakeTimeout)
	defer timer.Stop()
	select {
	case <-ready:
	case <-done:
		t.teardown()
		return ErrNoRoomState
	case <-timer.C:
		t.teardown()
		return ErrNoRoomState
	case <-ctx.Done():
		t.teardown()
		return ctx.Err()
	}

	if t.opts.EnableMedia {
		if err := t.startMedia(); err != nil {
			t.teardown()
			return fmt.Errorf("start media: %w", err)
		}
	}
	t.log.Info().Str("url", u.Host+u.Path).Msg("connected")
	return nil
}

// Disconnect says goodbye to the server and releases the socket and the
// peer connection. It is a no-op when not connected.
func (t *Transport) Disconnect(ctx context.Context) error {
	t.mu.RLock()
	send, done := t.send, t.done
	connected := t.conn != nil
	t.mu.RUnlock()
	if !connected {
		return nil
	}
	if b, err := core.EncodeFrame(core.Envelope{Type: core.FrameLeave}); err == nil {
		select {
		case send <- b:
		default:
		}
	}
	// give the write pump a moment to flush the leave frame
	select {
	case <-done:
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
	}
	t.teardown()
	return nil
}

func (t *Transport) Publish(ctx context.Context, data []byte) error {
	b, err := core.EncodeFrame(core.DataFrame{Type: core.FrameData, Payload: data})
	if err != nil {
		return err
	}
	return t.enqueue(ctx, b)
}

func (t *Transport) SetAudioPublishing(_ context.Context, enabled bool) error {
	t.mu.Lock()
	t.publishing = enabled
	m := t.media
	t.mu.Unlock()
	if m != nil {
		m.setPublishing(enabled)
	}
	return nil
}

func (t *Transport) SetMicrophone(_ context.Context, enabled bool) error {
	t.mu.Lock()
	t.micOn = enabled
	m := t.media
	t.mu.Unlock()
	if m != nil {
		return m.setMicrophone(enabled)
	}
	return nil
}

func (t *Transport) SetCamera(_ context.Context, enabled bool) error {
	if enabled {
		return ErrCameraUnsupported
	}
	return nil
}

func (t *Transport) Metadata() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.metadata
}

// Participants returns the roster, oldest member first.
func (t *Transport) Participants() []domain.Participant {
	t.mu.RLock()
	out := make([]domain.Participant, 0, len(t.participants))
	for _, p := range t.participants {
		out = append(out, p)
	}
	t.mu.RUnlock()
	slices.SortStableFunc(out, func(a, b domain.Participant) int { return a.JoinedAt.Compare(b.JoinedAt) })
	return out
}

func (t *Transport) SetListener(l core.TransportListener) {
	t.mu.Lock()
	t.listener = l
	t.mu.Unlock()
}

// WriteSample feeds one encoded Opus frame of the local microphone. Samples
// are dropped while publishing or the microphone is off.
func (t *Transport) WriteSample(s media.Sample) error {
	t.mu.RLock()
	m := t.media
	t.mu.RUnlock()
	if m == nil {
		return ErrNotConnected
	}
	return m.writeSample(s)
}

// OnSlotTrack registers fn for the audio of each seat slot the server sends.
func (t *Transport) OnSlotTrack(fn func(slot int, track *webrtc.TrackRemote)) {
	t.mu.Lock()
	t.onSlot = fn
	m := t.media
	t.mu.Unlock()
	if m != nil {
		m.setOnSlot(fn)
	}
}

func (t *Transport) enqueue(ctx context.Context, b []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.conn == nil {
		return ErrNotConnected
	}
	select {
	case t.send <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBackpressure
	}
}

func (t *Transport) teardown() {
	t.mu.Lock()
	conn, cancel, m := t.conn, t.cancel, t.media
	t.conn, t.cancel, t.media = nil, nil, nil
	t.publishing, t.micOn = false, false
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close()
	}
	if m != nil {
		m.close()
	}
}

func (t *Transport) writePump(ctx context.Context, ws *websocket.Conn, send <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-send:
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				t.log.Warn().Err(err).Msg("writePump set deadline")
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				t.log.Warn().Err(err).Msg("writePump write error")
				return
			}
		}
	}
}

func (t *Transport) readPump(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.log.Debug().Err(err).Msg("readPump closing")
			t.mu.Lock()
			owned := t.conn == ws
			t.mu.Unlock()
			if owned {
				t.teardown()
			}
			return
		}
		t.handleFrame(data)
	}
}

func (t *Transport) handleFrame(data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.log.Debug().Err(err).Msg("bad frame")
		return
	}
	switch env.Type {
	case core.FrameRoomState:
		var f core.RoomStateFrame
		if json.Unmarshal(data, &f) != nil {
			return
		}
		t.mu.Lock()
		t.metadata = f.Metadata
		clear(t.participants)
		for _, p := range f.Participants {
			t.participants[p.Identity] = p
		}
		once, ready := t.readyOnce, t.ready
		t.mu.Unlock()
		once.Do(func() { close(ready) })
	case core.FrameMetadata:
		var f core.MetadataFrame
		if json.Unmarshal(data, &f) != nil {
			return
		}
		t.mu.Lock()
		t.metadata = f.Metadata
		l := t.listener
		t.mu.Unlock()
		if l != nil {
			l.OnMetadataChanged(f.Metadata)
		}
	case core.FrameData:
		var f core.DataFrame
		if json.Unmarshal(data, &f) != nil {
			return
		}
		t.mu.RLock()
		l := t.listener
		t.mu.RUnlock()
		if l != nil {
			l.OnDataReceived(f.Payload, f.From)
		}
	case core.FrameParticipantJoined:
		var f core.ParticipantJoinedFrame
		if json.Unmarshal(data, &f) != nil {
			return
		}
		t.mu.Lock()
		t.participants[f.Participant.Identity] = f.Participant
		t.mu.Unlock()
	case core.FrameParticipantLeft:
		var f core.ParticipantLeftFrame
		if json.Unmarshal(data, &f) != nil {
			return
		}
		t.mu.Lock()
		delete(t.participants, f.Identity)
		t.mu.Unlock()
	case core.FrameAnswer:
		var f core.SDPFrame
		if json.Unmarshal(data, &f) != nil {
			return
		}
		if m := t.currentMedia(); m != nil {
			if err := m.applyAnswer(f.SDP); err != nil {
				t.log.Warn().Err(err).Msg("apply answer")
			}
		}
	case core.FrameCandidate:
		var f core.CandidateFrame
		if json.Unmarshal(data, &f) != nil {
			return
		}
		if m := t.currentMedia(); m != nil {
			if err := m.addCandidate(f); err != nil {
				t.log.Debug().Err(err).Msg("add candidate")
			}
		}
	case core.FrameError:
		var f core.ErrorFrame
		_ = json.Unmarshal(data, &f)
		t.log.Warn().Str("error", f.Error).Msg("server error frame")
	case core.FramePong:
	default:
		t.log.Debug().Str("type", env.Type).Msg("unknown frame")
	}
}

func (t *Transport) currentMedia() *publisher {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.media
}

func (t *Transport) startMedia() error {
	t.mu.RLock()
	publishing, micOn, onSlot := t.publishing, t.micOn, t.onSlot
	t.mu.RUnlock()

	m, err := newPublisher(t.opts.ICEServers, t.opts.RecvSlots, onSlot, t.log)
	if err != nil {
		return err
	}
	m.setPublishing(publishing)
	if err := m.setMicrophone(micOn); err != nil {
		m.close()
		return err
	}
	offer, err := m.offer()
	if err != nil {
		m.close()
		return err
	}
	b, err := core.EncodeFrame(core.SDPFrame{Type: core.FrameOffer, SDP: offer})
	if err != nil {
		m.close()
		return err
	}

	t.mu.Lock()
	t.media = m
	t.mu.Unlock()
	return t.enqueue(context.Background(), b)
}
