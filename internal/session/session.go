// Package session drives one client's membership of an audio room: it joins
// through the RoomBackend and MediaTransport, keeps the seat registry in sync
// with the room metadata and routes data-channel events.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
)

var (
	ErrNotConnected     = errors.New("session: not connected")
	ErrAlreadyConnected = errors.New("session: already connected")
	ErrClosed           = errors.New("session: room closed")
	ErrSeatUnavailable  = errors.New("session: seat unavailable")
	ErrSeatLocked       = errors.New("session: seat locked")
	ErrNotSeated        = errors.New("session: not on a seat")
	ErrLayout           = errors.New("session: layout change rejected")
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type Options struct {
	Backend   core.RoomBackend
	Transport core.MediaTransport
	// TransportURL is passed to MediaTransport.Connect together with the join token.
	TransportURL string
	// Layout of a freshly joined room; two rows of five when empty.
	Layout domain.LayoutConfig
	Logger *zerolog.Logger
}

// Session owns at most one joined Room at a time.
type Session struct {
	backend   core.RoomBackend
	transport core.MediaTransport
	url       string
	layout    domain.LayoutConfig
	log       zerolog.Logger

	mu    sync.Mutex
	state State
	room  *Room

	listeners *listeners
}

func New(opts Options) *Session {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	layout := opts.Layout
	if layout.SeatCount() == 0 {
		layout = domain.DefaultLayout()
	}
	return &Session{
		backend:   opts.Backend,
		transport: opts.Transport,
		url:       opts.TransportURL,
		layout:    layout,
		log:       logger.With().Str("module", "session").Logger(),
		listeners: newListeners(),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers l for state changes of every room joined through s.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	return s.listeners.add(l)
}

// Room returns the joined room, if any.
func (s *Session) Room() (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room, s.room != nil
}

func (s *Session) CreateRoom(ctx context.Context, name string) (domain.CreatedRoom, error) {
	created, err := s.backend.CreateRoom(ctx, name)
	if err != nil {
		return domain.CreatedRoom{}, fmt.Errorf("create room: %w", err)
	}
	s.log.Info().Str("room", string(created.Name)).Str("sid", created.SID).Msg("room created")
	return created, nil
}

// Connect joins roomID as identity. The returned Room is the only handle for
// seat, mic and chat operations.
func (s *Session) Connect(ctx context.Context, identity domain.Identity, roomID string) (*Room, error) {
	s.mu.Lock()
	if s.state != Disconnected {
		s.mu.Unlock()
		return nil, ErrAlreadyConnected
	}
	s.state = Connecting
	s.mu.Unlock()

	room, err := s.connect(ctx, identity, roomID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = Disconnected
		return nil, err
	}
	s.state = Connected
	s.room = room
	return room, nil
}

func (s *Session) connect(ctx context.Context, identity domain.Identity, roomID string) (*Room, error) {
	logger := s.log.With().Str("room", roomID).Str("user", string(identity.UserID)).Logger()

	token, err := s.backend.JoinToken(ctx, string(identity.UserID), roomID)
	if err != nil {
		return nil, fmt.Errorf("join token: %w", err)
	}
	if token.RoomName != "" {
		roomID = string(token.RoomName)
	}
	if err := s.transport.Connect(ctx, s.url, token.Token); err != nil {
		return nil, fmt.Errorf("connect transport: %w", err)
	}

	room := newRoom(s, identity, roomID, logger)
	if err := room.setup(ctx); err != nil {
		s.transport.SetListener(nil)
		if derr := s.transport.Disconnect(ctx); derr != nil {
			logger.Warn().Err(derr).Msg("disconnect after failed setup")
		}
		return nil, fmt.Errorf("setup room: %w", err)
	}
	logger.Info().Msg("connected")
	return room, nil
}

// Close leaves the joined room, if any. It is safe to call at any time.
func (s *Session) Close(ctx context.Context) error {
	room, ok := s.Room()
	if !ok {
		return nil
	}
	return room.Close(ctx)
}

func (s *Session) beginClose(r *Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.room != r || s.state != Connected {
		return false
	}
	s.state = Disconnecting
	return true
}

func (s *Session) endClose() {
	s.mu.Lock()
	s.state = Disconnected
	s.room = nil
	s.mu.Unlock()
}
