// Package seats keeps one client's view of the room seats in sync with the
// room metadata blob.
//
// Every local mutation rewrites the whole blob through a MetadataWriter; remote
// blobs are merged back with Reconcile. The blob is last-write-wins and there is
// no server-side arbitration, so two clients racing for the same seat may both
// see success locally until the next reconciliation.
package seats

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/dkeye/voiceroom/internal/domain"
)

// MetadataWriter replaces the room metadata blob on the backend.
type MetadataWriter interface {
	UpdateRoomMetadata(ctx context.Context, roomID, metadata string) error
}

type Registry struct {
	mu       sync.Mutex
	roomID   string
	local    domain.UserID
	layout   domain.LayoutConfig
	perRow   int
	seats    []*domain.Seat
	closed   bool
	onChange func()

	writer MetadataWriter
	log    zerolog.Logger
}

func NewRegistry(roomID string, local domain.UserID, writer MetadataWriter, logger zerolog.Logger) *Registry {
	return &Registry{
		roomID: roomID,
		local:  local,
		perRow: domain.DefaultSeatsPerRow,
		writer: writer,
		log:    logger.With().Str("module", "seats").Str("room", roomID).Logger(),
	}
}

// OnChange registers fn to run after every local mutation or reconciliation.
// fn runs on the mutating goroutine, outside the registry lock.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// InitWithLayout builds the seat sequence from layout and reconciles it with
// the currently known metadata, if any.
func (r *Registry) InitWithLayout(layout domain.LayoutConfig, metadata string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.layout = layout
	if len(layout.Rows) > 0 && layout.Rows[0].Count > 0 {
		r.perRow = layout.Rows[0].Count
	}
	r.seats = EmptySeats(layout)
	r.log.Info().Int("seats", len(r.seats)).Msg("layout initialized")
	r.mu.Unlock()

	if LooksLikeSeats(metadata) {
		r.Reconcile(metadata)
		return
	}
	r.notify()
}

// EmptySeats lays out one unlocked, empty seat per layout position.
func EmptySeats(layout domain.LayoutConfig) []*domain.Seat {
	out := make([]*domain.Seat, 0, layout.SeatCount())
	for row, rc := range layout.Rows {
		for col := 0; col < rc.Count; col++ {
			out = append(out, domain.NewSeat(len(out), row, col))
		}
	}
	return out
}

// TakeSeat puts user on an empty seat. An occupied seat is left alone.
func (r *Registry) TakeSeat(ctx context.Context, seatIndex int, user *domain.User) bool {
	return r.mutate(ctx, "take_seat", func() bool {
		if !r.valid(seatIndex) || user == nil {
			return false
		}
		seat := r.seats[seatIndex]
		if !seat.Empty() {
			return false
		}
		if _, taken := r.seatOf(user.UserID); taken {
			return false
		}
		seat.User = user.Clone()
		return true
	})
}

// LeaveSeat vacates seatIndex only when userID occupies it.
func (r *Registry) LeaveSeat(ctx context.Context, seatIndex int, userID domain.UserID) bool {
	return r.mutate(ctx, "leave_seat", func() bool {
		if !r.valid(seatIndex) || !r.seats[seatIndex].OccupiedBy(userID) {
			return false
		}
		r.seats[seatIndex].User = nil
		return true
	})
}

// RemoveUserFromSeat vacates seatIndex whoever holds it and returns the
// removed occupant's id.
func (r *Registry) RemoveUserFromSeat(ctx context.Context, seatIndex int) (domain.UserID, bool) {
	var removed domain.UserID
	ok := r.mutate(ctx, "remove_user_from_seat", func() bool {
		if !r.valid(seatIndex) || r.seats[seatIndex].Empty() {
			return false
		}
		removed = r.seats[seatIndex].User.UserID
		r.seats[seatIndex].User = nil
		return true
	})
	return removed, ok
}

// SwitchSeat moves userID from one seat to another. The move is dropped when
// the target is occupied.
func (r *Registry) SwitchSeat(ctx context.Context, from, to int, userID domain.UserID) bool {
	return r.mutate(ctx, "switch_seat", func() bool {
		return r.move(from, to, userID)
	})
}

func (r *Registry) LockSeat(ctx context.Context, seatIndex int) bool {
	return r.setLocked(ctx, seatIndex, true)
}

func (r *Registry) UnlockSeat(ctx context.Context, seatIndex int) bool {
	return r.setLocked(ctx, seatIndex, false)
}

func (r *Registry) MuteSeat(ctx context.Context, seatIndex int) bool {
	return r.setMuted(ctx, seatIndex, true)
}

func (r *Registry) UnMuteSeat(ctx context.Context, seatIndex int) bool {
	return r.setMuted(ctx, seatIndex, false)
}

// AddSeatRow grows the sequence from oldCount to newCount seats.
func (r *Registry) AddSeatRow(ctx context.Context, oldCount, newCount int) bool {
	return r.mutate(ctx, "add_seats", func() bool {
		if oldCount != len(r.seats) || newCount <= oldCount {
			return false
		}
		r.layout = domain.LayoutForCount(newCount, r.perRow)
		for i := oldCount; i < newCount; i++ {
			row, col := r.layout.Position(i)
			r.seats = append(r.seats, domain.NewSeat(i, row, col))
		}
		return true
	})
}

// RemoveSeatRow shrinks the sequence from oldCount to newCount seats. Every
// occupant of the removed range is first moved to an empty remaining seat,
// highest index first; when there is not enough room the shrink is abandoned.
func (r *Registry) RemoveSeatRow(ctx context.Context, oldCount, newCount int) bool {
	return r.mutate(ctx, "remove_seats", func() bool {
		if oldCount != len(r.seats) || newCount < 0 || newCount >= oldCount {
			return false
		}
		empty := lo.CountBy(r.seats, func(s *domain.Seat) bool { return s.Empty() })
		if empty < oldCount-newCount {
			r.log.Info().Int("empty", empty).Int("old", oldCount).Int("new", newCount).Msg("not enough empty seats, shrink abandoned")
			return false
		}
		for i := oldCount - 1; i >= newCount; i-- {
			if seat := r.seats[i]; !seat.Empty() {
				_, to, _ := lo.FindIndexOf(r.seats[:newCount], func(s *domain.Seat) bool { return s.Empty() })
				r.move(i, to, seat.User.UserID)
			}
			r.seats = r.seats[:i]
		}
		r.layout = domain.LayoutForCount(newCount, r.perRow)
		return true
	})
}

// Reconcile merges a remote metadata blob into the local seats. Existing seat
// and user objects are updated in place; seats the blob does not mention are
// left untouched. Malformed blobs are dropped.
func (r *Registry) Reconcile(metadata string) bool {
	states, err := Parse(metadata)
	if err != nil {
		r.log.Debug().Err(err).Msg("dropping metadata")
		return false
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false
	}
	for _, st := range states {
		if !r.valid(st.Index) {
			continue
		}
		seat := r.seats[st.Index]
		if st.Locked != nil {
			seat.Locked = *st.Locked
		}
		switch {
		case st.User == nil:
			seat.User = nil
		case seat.User != nil && seat.User.UserID == st.User.UserID:
			mergeUser(seat.User, st.User)
		default:
			seat.User = st.User
		}
	}
	r.mu.Unlock()

	r.notify()
	return true
}

// Clear vacates the local user's seat, if any, and tears the registry down.
// Every later call is a no-op.
func (r *Registry) Clear(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	var blob string
	var err error
	idx, seated := r.seatOf(r.local)
	if seated {
		r.seats[idx].User = nil
		blob, err = Marshal(r.seats)
	}
	r.seats = nil
	r.closed = true
	r.onChange = nil
	r.mu.Unlock()

	if !seated {
		return
	}
	if err != nil {
		r.log.Error().Err(err).Msg("marshal seats")
		return
	}
	r.push(ctx, "clear", blob)
}

// Seats returns a detached snapshot of every seat.
func (r *Registry) Seats() []domain.Seat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Map(r.seats, func(s *domain.Seat, _ int) domain.Seat { return s.Snapshot() })
}

// SeatOf returns the index of the seat held by userID.
func (r *Registry) SeatOf(userID domain.UserID) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seatOf(userID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seats)
}

func (r *Registry) Layout() domain.LayoutConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout
}

// Metadata serializes the current seats.
func (r *Registry) Metadata() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Marshal(r.seats)
}

// mutate runs fn under the lock and, when fn reports a change, writes the full
// seat sequence back once. Write failures are logged; local state stays.
func (r *Registry) mutate(ctx context.Context, op string, fn func() bool) bool {
	r.mu.Lock()
	if r.closed || !fn() {
		r.mu.Unlock()
		return false
	}
	blob, err := Marshal(r.seats)
	r.mu.Unlock()

	r.notify()
	if err != nil {
		r.log.Error().Err(err).Str("op", op).Msg("marshal seats")
		return true
	}
	r.push(ctx, op, blob)
	return true
}

func (r *Registry) push(ctx context.Context, op, blob string) {
	if r.writer == nil {
		return
	}
	if err := r.writer.UpdateRoomMetadata(ctx, r.roomID, blob); err != nil {
		r.log.Warn().Err(err).Str("op", op).Msg("metadata write-back failed")
		return
	}
	r.log.Debug().Str("op", op).Msg("metadata written")
}

func (r *Registry) notify() {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (r *Registry) setLocked(ctx context.Context, seatIndex int, locked bool) bool {
	op := "unlock_seat"
	if locked {
		op = "lock_seat"
	}
	return r.mutate(ctx, op, func() bool {
		if !r.valid(seatIndex) || !r.seats[seatIndex].Empty() {
			return false
		}
		r.seats[seatIndex].Locked = locked
		return true
	})
}

func (r *Registry) setMuted(ctx context.Context, seatIndex int, muted bool) bool {
	op := "unmute_seat"
	if muted {
		op = "mute_seat"
	}
	return r.mutate(ctx, op, func() bool {
		if !r.valid(seatIndex) || r.seats[seatIndex].Empty() {
			return false
		}
		r.seats[seatIndex].User.Muted = muted
		return true
	})
}

// move must be called with mu held.
func (r *Registry) move(from, to int, userID domain.UserID) bool {
	if !r.valid(from) || !r.valid(to) || from == to {
		return false
	}
	src, dst := r.seats[from], r.seats[to]
	if !src.OccupiedBy(userID) || !dst.Empty() {
		return false
	}
	dst.User, src.User = src.User, nil
	return true
}

func (r *Registry) valid(seatIndex int) bool {
	return seatIndex >= 0 && seatIndex < len(r.seats)
}

func (r *Registry) seatOf(userID domain.UserID) (int, bool) {
	_, idx, ok := lo.FindIndexOf(r.seats, func(s *domain.Seat) bool { return s.OccupiedBy(userID) })
	return idx, ok
}

// mergeUser keeps the live mic/camera fields of a seat whose occupant did not
// change.
func mergeUser(dst, src *domain.User) {
	dst.Name = src.Name
	dst.Avatar = src.Avatar
	dst.AvatarURL = src.AvatarURL
	dst.RoomID = src.RoomID
	dst.Muted = src.Muted
}
