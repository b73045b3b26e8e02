package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
	"github.com/dkeye/voiceroom/internal/seats"
)

// Room is a joined room. It is only handed out by Session.Connect and stays
// usable until Close.
type Room struct {
	s         *Session
	id        string
	transport core.MediaTransport

	userMu sync.RWMutex
	user   *domain.User

	seats    *seats.Registry
	sender   *Sender
	receiver *Receiver
	chat     *chatLog

	onMic     atomic.Bool
	setupDone bool
	closed    atomic.Bool
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc

	log zerolog.Logger
}

func newRoom(s *Session, identity domain.Identity, roomID string, logger zerolog.Logger) *Room {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Room{
		s:         s,
		id:        roomID,
		transport: s.transport,
		user:      domain.NewUser(identity, roomID),
		chat:      &chatLog{},
		ctx:       ctx,
		cancel:    cancel,
		log:       logger,
	}
	r.seats = seats.NewRegistry(roomID, identity.UserID, s.backend, logger)
	r.sender = newSender(s.transport, identity, roomID, logger)
	r.receiver = newReceiver(ctx, identity.UserID, r.chat, r, s.listeners, logger)
	return r
}

// setup wires the room to the transport once: listener, seats, mic off.
func (r *Room) setup(ctx context.Context) error {
	if r.setupDone {
		return nil
	}
	r.transport.SetListener(transportHooks{r: r})
	r.seats.OnChange(r.seatsChanged)
	r.seats.InitWithLayout(r.s.layout, r.transport.Metadata())
	if err := r.askPublish(ctx, false); err != nil {
		return err
	}
	r.setupDone = true
	return nil
}

func (r *Room) ID() string { return r.id }

func (r *Room) CurrentUser() domain.User {
	r.userMu.RLock()
	defer r.userMu.RUnlock()
	return *r.user
}

func (r *Room) OnMic() bool { return r.onMic.Load() }

func (r *Room) Seats() []domain.Seat { return r.seats.Seats() }

func (r *Room) Messages() []domain.ChatMessage { return r.chat.snapshot() }

func (r *Room) MicRequests() []domain.MicRequest { return r.chat.pending() }

// Participants returns the transport roster, oldest member first.
func (r *Room) Participants() []domain.Participant {
	ps := slices.Clone(r.transport.Participants())
	slices.SortStableFunc(ps, func(a, b domain.Participant) int { return a.JoinedAt.Compare(b.JoinedAt) })
	return ps
}

// TakeSeat opens the local mic and puts the local user on seatIndex.
func (r *Room) TakeSeat(ctx context.Context, seatIndex int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	all := r.seats.Seats()
	if seatIndex < 0 || seatIndex >= len(all) || !all[seatIndex].Empty() {
		return ErrSeatUnavailable
	}
	if all[seatIndex].Locked {
		return ErrSeatLocked
	}
	// one seat per user; moving goes through SwitchSeat
	if _, seated := r.seats.SeatOf(r.user.UserID); seated {
		return ErrSeatUnavailable
	}
	if err := r.askPublish(ctx, true); err != nil {
		return err
	}
	if !r.seats.TakeSeat(ctx, seatIndex, r.userSnapshot()) {
		if err := r.askPublish(ctx, false); err != nil {
			r.log.Warn().Err(err).Msg("close mic after lost seat")
		}
		return ErrSeatUnavailable
	}
	r.setOnMic(true)
	return nil
}

func (r *Room) LeaveSeat(ctx context.Context, seatIndex int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if mine, ok := r.seats.SeatOf(r.user.UserID); !ok || mine != seatIndex {
		return ErrNotSeated
	}
	if err := r.askPublish(ctx, false); err != nil {
		return err
	}
	r.setOnMic(false)
	if !r.seats.LeaveSeat(ctx, seatIndex, r.user.UserID) {
		return ErrNotSeated
	}
	return nil
}

// SwitchSeat moves the local user from its current seat to seatIndex.
func (r *Room) SwitchSeat(ctx context.Context, seatIndex int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	from, ok := r.seats.SeatOf(r.user.UserID)
	if !ok {
		return ErrNotSeated
	}
	if !r.seats.SwitchSeat(ctx, from, seatIndex, r.user.UserID) {
		return ErrSeatUnavailable
	}
	return nil
}

// MuteSeat flags seatIndex as muted; the local mic is closed first when the
// seat is the local user's.
func (r *Room) MuteSeat(ctx context.Context, seatIndex int) error {
	return r.setSeatMuted(ctx, seatIndex, true)
}

func (r *Room) UnmuteSeat(ctx context.Context, seatIndex int) error {
	return r.setSeatMuted(ctx, seatIndex, false)
}

func (r *Room) LockSeat(ctx context.Context, seatIndex int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if !r.seats.LockSeat(ctx, seatIndex) {
		return ErrSeatUnavailable
	}
	return nil
}

func (r *Room) UnlockSeat(ctx context.Context, seatIndex int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if !r.seats.UnlockSeat(ctx, seatIndex) {
		return ErrSeatUnavailable
	}
	return nil
}

// RemoveUserFromSeat vacates seatIndex and tells the removed user to close
// its mic. The metadata write goes out before the event; receivers must not
// rely on that order.
func (r *Room) RemoveUserFromSeat(ctx context.Context, seatIndex int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	removed, ok := r.seats.RemoveUserFromSeat(ctx, seatIndex)
	if !ok {
		return ErrSeatUnavailable
	}
	if removed == r.user.UserID {
		r.dropMic(ctx)
	}
	r.sender.RemoveUserFromSeat(ctx, seatIndex, removed)
	return nil
}

// AddSeats appends count seats, filling the last row first.
func (r *Room) AddSeats(ctx context.Context, count int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	old := r.seats.Len()
	if count <= 0 || !r.seats.AddSeatRow(ctx, old, old+count) {
		return ErrLayout
	}
	return nil
}

// RemoveSeats drops the last count seats, moving their occupants to empty
// seats that remain.
func (r *Room) RemoveSeats(ctx context.Context, count int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	old := r.seats.Len()
	if count <= 0 || count > old || !r.seats.RemoveSeatRow(ctx, old, old-count) {
		return ErrLayout
	}
	return nil
}

// SendMessage appends the message locally before broadcasting it.
func (r *Room) SendMessage(ctx context.Context, message string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	msgs := r.chat.append(domain.NewChatMessage(r.id, message, r.CurrentUser()))
	r.s.listeners.each(func(l Listener) { l.OnChatChanged(msgs) })
	r.sender.SendMessage(ctx, message)
	return nil
}

func (r *Room) ClearChat(ctx context.Context) error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.chat.clear()
	r.s.listeners.each(func(l Listener) { l.OnChatChanged(nil) })
	r.sender.ClearChat(ctx)
	return nil
}

func (r *Room) InviteUserToTakeMic(ctx context.Context, userID domain.UserID, seatIndex int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.sender.InviteUserToTakeMic(ctx, userID, seatIndex)
	return nil
}

func (r *Room) RequestTakeMic(ctx context.Context, seatIndex int) error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.sender.RequestTakeMic(ctx, seatIndex)
	return nil
}

func (r *Room) SendGift(ctx context.Context, gift string) error {
	if r.closed.Load() {
		return ErrClosed
	}
	r.sender.SendGift(ctx, gift)
	return nil
}

// DismissMicRequest drops the pending requests of userID.
func (r *Room) DismissMicRequest(userID domain.UserID) {
	reqs, changed := r.chat.dismiss(userID)
	if changed {
		r.s.listeners.each(func(l Listener) { l.OnMicRequestsChanged(reqs) })
	}
}

// Close stops publishing, vacates the local seat, drops the chat and
// disconnects the transport. Later calls return nil.
func (r *Room) Close(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() { err = r.close(ctx) })
	return err
}

func (r *Room) close(ctx context.Context) error {
	owned := r.s.beginClose(r)
	r.closed.Store(true)
	r.cancel()

	if err := r.transport.SetAudioPublishing(ctx, false); err != nil {
		r.log.Warn().Err(err).Msg("stop audio publishing")
	}
	r.setOnMic(false)
	r.seats.Clear(ctx)
	r.chat.reset()
	r.transport.SetListener(nil)
	err := r.transport.Disconnect(ctx)
	if owned {
		r.s.endClose()
	}
	if err != nil {
		r.log.Warn().Err(err).Msg("disconnect")
		return err
	}
	r.log.Info().Msg("room closed")
	return nil
}

func (r *Room) setSeatMuted(ctx context.Context, seatIndex int, muted bool) error {
	if r.closed.Load() {
		return ErrClosed
	}
	if mine, ok := r.seats.SeatOf(r.user.UserID); ok && mine == seatIndex {
		if err := r.transport.SetMicrophone(ctx, !muted); err != nil {
			return err
		}
		r.setOnMic(!muted)
	}
	apply := r.seats.UnMuteSeat
	if muted {
		apply = r.seats.MuteSeat
	}
	if !apply(ctx, seatIndex) {
		return ErrSeatUnavailable
	}
	return nil
}

// askPublish aligns local audio publishing and mic with enable. Camera is
// always kept off.
func (r *Room) askPublish(ctx context.Context, enable bool) error {
	return errors.Join(
		r.transport.SetAudioPublishing(ctx, enable),
		r.transport.SetMicrophone(ctx, enable),
		r.transport.SetCamera(ctx, false),
	)
}

func (r *Room) dropMic(ctx context.Context) {
	if err := r.transport.SetAudioPublishing(ctx, false); err != nil {
		r.log.Warn().Err(err).Msg("stop audio publishing")
	}
	if err := r.transport.SetMicrophone(ctx, false); err != nil {
		r.log.Warn().Err(err).Msg("disable microphone")
	}
	r.setOnMic(false)
}

func (r *Room) setOnMic(on bool) {
	if r.onMic.Swap(on) == on {
		return
	}
	r.userMu.Lock()
	r.user.MicOn = on
	r.userMu.Unlock()
	r.s.listeners.each(func(l Listener) { l.OnMicStateChanged(on) })
}

func (r *Room) userSnapshot() *domain.User {
	r.userMu.RLock()
	defer r.userMu.RUnlock()
	return r.user.Clone()
}

func (r *Room) seatsChanged() {
	all := r.seats.Seats()
	r.s.listeners.each(func(l Listener) { l.OnSeatsChanged(all) })
}

// transportHooks keeps the TransportListener methods off Room's public API.
type transportHooks struct{ r *Room }

func (h transportHooks) OnMetadataChanged(metadata string) {
	if !seats.LooksLikeSeats(metadata) {
		return
	}
	h.r.seats.Reconcile(metadata)
}

func (h transportHooks) OnDataReceived(data []byte, senderID string) {
	h.r.receiver.Handle(data, senderID)
}
