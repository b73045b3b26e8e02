package seats

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/voiceroom/internal/domain"
)

type recordingWriter struct {
	mu     sync.Mutex
	blobs  []string
	roomID string
	err    error
}

func (w *recordingWriter) UpdateRoomMetadata(_ context.Context, roomID, metadata string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.roomID = roomID
	w.blobs = append(w.blobs, metadata)
	return w.err
}

func (w *recordingWriter) writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.blobs)
}

func (w *recordingWriter) last() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.blobs) == 0 {
		return ""
	}
	return w.blobs[len(w.blobs)-1]
}

func newRegistry(t *testing.T, count int) (*Registry, *recordingWriter) {
	t.Helper()
	w := &recordingWriter{}
	r := NewRegistry("r1", "local", w, zerolog.Nop())
	r.InitWithLayout(domain.LayoutForCount(count, domain.DefaultSeatsPerRow), "")
	return r, w
}

func user(id string) *domain.User {
	return domain.NewUser(domain.Identity{UserID: domain.UserID(id), Name: id, Avatar: id + ".png"}, "r1")
}

func TestRegistry_InitWithLayout_Builds_Rows(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 7)

	seats := r.Seats()
	req.Len(seats, 7)
	for i, s := range seats {
		req.Equal(i, s.Index)
	}
	req.Equal(1, seats[5].Row)
	req.Equal(0, seats[5].Column)
	req.Equal(1, seats[6].Column)
	req.Zero(w.writes())
}

func TestRegistry_InitWithLayout_Reconciles_Known_Metadata(t *testing.T) {
	req := require.New(t)
	r := NewRegistry("r1", "local", nil, zerolog.Nop())
	blob := `{"seats":[{"seatIndex":1,"rowIndex":0,"columnIndex":1,"isLocked":true,"currentUser":null},
		{"seatIndex":2,"rowIndex":0,"columnIndex":2,"isLocked":false,"currentUser":{"userId":"u2","name":"B","avatar":"b","roomId":"r1","isMuted":true}}]}`

	r.InitWithLayout(domain.DefaultLayout(), blob)

	seats := r.Seats()
	req.Len(seats, 10)
	req.True(seats[1].Locked)
	req.Equal(domain.UserID("u2"), seats[2].User.UserID)
	req.True(seats[2].User.Muted)
}

func TestRegistry_Out_Of_Range_Is_NoOp(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)
	ctx := context.Background()
	before := r.Seats()

	for _, idx := range []int{-1, 4, 100} {
		req.False(r.TakeSeat(ctx, idx, user("a")))
		req.False(r.LeaveSeat(ctx, idx, "a"))
		_, ok := r.RemoveUserFromSeat(ctx, idx)
		req.False(ok)
		req.False(r.SwitchSeat(ctx, idx, 0, "a"))
		req.False(r.SwitchSeat(ctx, 0, idx, "a"))
		req.False(r.LockSeat(ctx, idx))
		req.False(r.UnlockSeat(ctx, idx))
		req.False(r.MuteSeat(ctx, idx))
		req.False(r.UnMuteSeat(ctx, idx))
	}

	req.Equal(before, r.Seats())
	req.Zero(w.writes())
}

func TestRegistry_TakeSeat_Never_Overwrites(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)
	ctx := context.Background()

	// Given A took seat 1
	req.True(r.TakeSeat(ctx, 1, user("a")))

	// When B tries the same seat before any reconciliation
	req.False(r.TakeSeat(ctx, 1, user("b")))

	// Then A stays and only one write happened
	req.Equal(domain.UserID("a"), r.Seats()[1].User.UserID)
	req.Equal(1, w.writes())
	req.Equal("r1", w.roomID)
}

func TestRegistry_TakeSeat_Keeps_One_Seat_Per_User(t *testing.T) {
	req := require.New(t)
	r, _ := newRegistry(t, 4)
	ctx := context.Background()

	req.True(r.TakeSeat(ctx, 0, user("a")))
	req.False(r.TakeSeat(ctx, 3, user("a")))

	req.True(r.Seats()[3].Empty())
}

func TestRegistry_LeaveSeat_Checks_Occupant(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)
	ctx := context.Background()
	req.True(r.TakeSeat(ctx, 2, user("a")))

	// When someone else leaves seat 2
	req.False(r.LeaveSeat(ctx, 2, "b"))

	// Then nothing changes
	req.Equal(domain.UserID("a"), r.Seats()[2].User.UserID)
	req.Equal(1, w.writes())

	req.True(r.LeaveSeat(ctx, 2, "a"))
	req.True(r.Seats()[2].Empty())
	req.Equal(2, w.writes())
}

func TestRegistry_Take_Switch_Leave_Scenario(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)
	ctx := context.Background()
	a := user("a")

	req.True(r.TakeSeat(ctx, 1, a))
	req.Equal(a.UserID, r.Seats()[1].User.UserID)

	req.True(r.SwitchSeat(ctx, 1, 2, a.UserID))
	seats := r.Seats()
	req.True(seats[1].Empty())
	req.Equal(a.UserID, seats[2].User.UserID)

	req.True(r.LeaveSeat(ctx, 2, a.UserID))
	req.True(r.Seats()[2].Empty())
	req.Equal(3, w.writes())
}

func TestRegistry_SwitchSeat_Dropped_When_Target_Taken(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)
	ctx := context.Background()
	req.True(r.TakeSeat(ctx, 0, user("a")))
	req.True(r.TakeSeat(ctx, 1, user("b")))

	req.False(r.SwitchSeat(ctx, 0, 1, "a"))

	seats := r.Seats()
	req.Equal(domain.UserID("a"), seats[0].User.UserID)
	req.Equal(domain.UserID("b"), seats[1].User.UserID)
	req.Equal(2, w.writes())
}

func TestRegistry_RemoveUserFromSeat_Returns_Occupant(t *testing.T) {
	req := require.New(t)
	r, _ := newRegistry(t, 4)
	ctx := context.Background()
	req.True(r.TakeSeat(ctx, 3, user("b")))

	removed, ok := r.RemoveUserFromSeat(ctx, 3)

	req.True(ok)
	req.Equal(domain.UserID("b"), removed)
	req.True(r.Seats()[3].Empty())

	_, ok = r.RemoveUserFromSeat(ctx, 3)
	req.False(ok)
}

func TestRegistry_LockSeat_On_Occupied_Seat_Is_NoOp(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)
	ctx := context.Background()
	req.True(r.TakeSeat(ctx, 0, user("a")))

	req.False(r.LockSeat(ctx, 0))

	seat := r.Seats()[0]
	req.False(seat.Locked)
	req.Equal(domain.UserID("a"), seat.User.UserID)
	req.Equal(1, w.writes())

	req.True(r.LockSeat(ctx, 1))
	req.True(r.Seats()[1].Locked)
	req.True(r.UnlockSeat(ctx, 1))
	req.False(r.Seats()[1].Locked)
}

func TestRegistry_Mute_Requires_Occupant(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)
	ctx := context.Background()

	req.False(r.MuteSeat(ctx, 0))
	req.Zero(w.writes())

	req.True(r.TakeSeat(ctx, 0, user("a")))
	req.True(r.MuteSeat(ctx, 0))
	req.True(r.Seats()[0].User.Muted)
	req.Contains(w.last(), `"isMuted":true`)

	req.True(r.UnMuteSeat(ctx, 0))
	req.False(r.Seats()[0].User.Muted)
}

func TestRegistry_Write_Failure_Keeps_Local_State(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)
	w.err = errors.New("backend down")

	req.True(r.TakeSeat(context.Background(), 0, user("a")))

	req.Equal(domain.UserID("a"), r.Seats()[0].User.UserID)
	req.Equal(1, w.writes())
}

func TestRegistry_AddSeatRow(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 10)
	ctx := context.Background()

	req.False(r.AddSeatRow(ctx, 8, 15))
	req.True(r.AddSeatRow(ctx, 10, 15))

	seats := r.Seats()
	req.Len(seats, 15)
	req.Equal(14, seats[14].Index)
	req.Equal(2, seats[14].Row)
	req.Equal(4, seats[14].Column)
	req.Equal(1, w.writes())
}

func TestRegistry_RemoveSeatRow_Relocates_Occupants(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 10)
	ctx := context.Background()

	// Given occupants in the row to be removed
	req.True(r.TakeSeat(ctx, 0, user("a")))
	req.True(r.TakeSeat(ctx, 7, user("b")))
	req.True(r.TakeSeat(ctx, 9, user("c")))
	writes := w.writes()

	// When the second row is removed
	req.True(r.RemoveSeatRow(ctx, 10, 5))

	// Then the highest occupant lands on the first empty seat
	seats := r.Seats()
	req.Len(seats, 5)
	req.Equal(domain.UserID("a"), seats[0].User.UserID)
	req.Equal(domain.UserID("c"), seats[1].User.UserID)
	req.Equal(domain.UserID("b"), seats[2].User.UserID)
	req.Equal(writes+1, w.writes())
}

func TestRegistry_RemoveSeatRow_Abandoned_Without_Room(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 6)
	ctx := context.Background()
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		req.True(r.TakeSeat(ctx, i, user(id)))
	}
	before := r.Seats()
	writes := w.writes()

	req.False(r.RemoveSeatRow(ctx, 6, 4))

	req.Equal(before, r.Seats())
	req.Equal(writes, w.writes())
}

func TestRegistry_RemoveSeatRow_Rejects_Bad_Counts(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 10)
	ctx := context.Background()

	req.False(r.RemoveSeatRow(ctx, 9, 5))
	req.False(r.RemoveSeatRow(ctx, 10, 10))
	req.False(r.RemoveSeatRow(ctx, 10, 12))
	req.Equal(10, r.Len())
	req.Zero(w.writes())
}

func TestRegistry_Reconcile_Merges_In_Place(t *testing.T) {
	req := require.New(t)
	r, _ := newRegistry(t, 4)
	ctx := context.Background()
	req.True(r.TakeSeat(ctx, 0, user("a")))
	req.True(r.TakeSeat(ctx, 1, user("b")))

	r.mu.Lock()
	seat0, user0 := r.seats[0], r.seats[0].User
	user0.MicOn = true
	r.mu.Unlock()

	// When a blob mutes A and omits B's occupant
	blob := `{"seats":[
		{"seatIndex":0,"rowIndex":0,"columnIndex":0,"isLocked":false,"currentUser":{"userId":"a","name":"Alice","avatar":"a.png","roomId":"r1","isMuted":true}},
		{"seatIndex":1,"rowIndex":0,"columnIndex":1,"isLocked":false}]}`
	req.True(r.Reconcile(blob))

	// Then seat 0 keeps its objects and unrelated fields
	r.mu.Lock()
	req.Same(seat0, r.seats[0])
	req.Same(user0, r.seats[0].User)
	r.mu.Unlock()
	seats := r.Seats()
	req.Equal("Alice", seats[0].User.Name)
	req.True(seats[0].User.Muted)
	req.True(seats[0].User.MicOn)

	// And seat 1 is cleared
	req.True(seats[1].Empty())
}

func TestRegistry_Reconcile_Replaces_New_Occupant(t *testing.T) {
	req := require.New(t)
	r, _ := newRegistry(t, 4)
	req.True(r.TakeSeat(context.Background(), 0, user("a")))

	r.mu.Lock()
	r.seats[0].User.MicOn = true
	r.seats[0].User.StreamID = "stream-a"
	r.mu.Unlock()

	// When the blob puts B on A's seat
	blob := `{"seats":[{"seatIndex":0,"rowIndex":0,"columnIndex":0,"isLocked":false,"currentUser":{"userId":"b","name":"Bob","avatar":"b.png","roomId":"r1","isMuted":false}}]}`
	req.True(r.Reconcile(blob))

	// Then B does not inherit A's live fields
	seat := r.Seats()[0]
	req.Equal(domain.UserID("b"), seat.User.UserID)
	req.Equal("Bob", seat.User.Name)
	req.False(seat.User.MicOn)
	req.Empty(seat.User.StreamID)
}

func TestRegistry_Unlock_And_UnMute_Log_Their_Op(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	r := NewRegistry("r1", "local", &recordingWriter{}, zerolog.New(&buf))
	r.InitWithLayout(domain.LayoutForCount(4, domain.DefaultSeatsPerRow), "")
	ctx := context.Background()

	req.True(r.LockSeat(ctx, 0))
	req.True(r.UnlockSeat(ctx, 0))
	req.True(r.TakeSeat(ctx, 1, user("a")))
	req.True(r.MuteSeat(ctx, 1))
	req.True(r.UnMuteSeat(ctx, 1))

	out := buf.String()
	for _, op := range []string{"lock_seat", "unlock_seat", "mute_seat", "unmute_seat"} {
		req.Contains(out, `"op":"`+op+`"`)
	}
}

func TestRegistry_Reconcile_Leaves_Unmentioned_Seats(t *testing.T) {
	req := require.New(t)
	r, _ := newRegistry(t, 10)
	ctx := context.Background()
	req.True(r.TakeSeat(ctx, 8, user("z")))

	blob := `{"seats":[{"seatIndex":0,"rowIndex":0,"columnIndex":0,"isLocked":true,"currentUser":null},
		{"seatIndex":42,"rowIndex":8,"columnIndex":2,"isLocked":true,"currentUser":null}]}`
	req.True(r.Reconcile(blob))

	seats := r.Seats()
	req.Len(seats, 10)
	req.True(seats[0].Locked)
	req.Equal(domain.UserID("z"), seats[8].User.UserID)
}

func TestRegistry_Reconcile_Drops_Malformed(t *testing.T) {
	req := require.New(t)
	r, _ := newRegistry(t, 4)
	calls := 0
	r.OnChange(func() { calls++ })

	req.False(r.Reconcile(`{"seats":`))
	req.False(r.Reconcile(`{"title":"x"}`))
	req.Zero(calls)
}

func TestRegistry_OnChange_Fires_After_Mutation(t *testing.T) {
	req := require.New(t)
	r, _ := newRegistry(t, 4)
	var seen []domain.Seat
	r.OnChange(func() { seen = r.Seats() })

	req.True(r.TakeSeat(context.Background(), 2, user("a")))

	req.Len(seen, 4)
	req.Equal(domain.UserID("a"), seen[2].User.UserID)
}

func TestRegistry_Seats_Are_Detached(t *testing.T) {
	req := require.New(t)
	r, _ := newRegistry(t, 4)
	req.True(r.TakeSeat(context.Background(), 0, user("a")))

	snap := r.Seats()
	snap[0].User.Name = "mallory"
	snap[1].Locked = true

	seats := r.Seats()
	req.Equal("a", seats[0].User.Name)
	req.False(seats[1].Locked)
}

func TestRegistry_Clear_Vacates_Local_Seat(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)
	ctx := context.Background()
	req.True(r.TakeSeat(ctx, 1, user("local")))
	req.True(r.TakeSeat(ctx, 2, user("b")))

	r.Clear(ctx)

	// Then one last write without the local user
	req.Equal(3, w.writes())
	req.NotContains(w.last(), `"userId":"local"`)
	req.Contains(w.last(), `"userId":"b"`)
	req.Zero(r.Len())

	// And the registry is torn down
	req.False(r.TakeSeat(ctx, 0, user("a")))
	req.False(r.Reconcile(w.last()))
	r.Clear(ctx)
	req.Equal(3, w.writes())
}

func TestRegistry_Clear_Without_Seat_Skips_Write(t *testing.T) {
	req := require.New(t)
	r, w := newRegistry(t, 4)

	r.Clear(context.Background())

	req.Zero(w.writes())
	req.Zero(r.Len())
}
