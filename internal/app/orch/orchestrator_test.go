package orch

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/voiceroom/internal/app"
	"github.com/dkeye/voiceroom/internal/app/sfu"
	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
)

type captureConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *captureConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.full {
		return errors.New("queue full")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *captureConn) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *captureConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, f := range c.frames {
		var env core.Envelope
		_ = json.Unmarshal(f, &env)
		out = append(out, env.Type)
	}
	return out
}

func (c *captureConn) last(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return errors.New("no frames")
	}
	return json.Unmarshal(c.frames[len(c.frames)-1], v)
}

func newOrchestrator() *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Policy:   app.NewSlowConsumerPolicy(0),
		Relays:   sfu.NewRelayManager(),
	}
}

func join(t *testing.T, o *Orchestrator, sid core.SessionID, user string, room domain.RoomName) *captureConn {
	t.Helper()
	conn := &captureConn{}
	sess := core.NewMemberSession(domain.NewMember(domain.Identity{UserID: domain.UserID(user), Name: user}, time.Now()))
	sess.UpdateSignal(conn)
	o.Registry.BindSignal(sid, sess, nil)
	_, ok := o.Join(sid, room)
	require.True(t, ok)
	return conn
}

func TestJoin_Announces_To_Members(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()

	// Given alice in the lobby
	alice := join(t, o, "s-a", "alice", "lobby")

	// When bob joins
	bob := join(t, o, "s-b", "bob", "lobby")

	// Then alice hears about him and bob does not hear about himself
	req.Equal([]string{core.FrameParticipantJoined}, alice.types())
	var f core.ParticipantJoinedFrame
	req.NoError(alice.last(&f))
	req.Equal(domain.UserID("bob"), f.Participant.Identity)
	req.Empty(bob.types())

	room, ok := o.Rooms.GetRoom("lobby")
	req.True(ok)
	req.Equal(2, room.MemberCount())
}

func TestOnData_Skips_Sender(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	alice := join(t, o, "s-a", "alice", "lobby")
	bob := join(t, o, "s-b", "bob", "lobby")
	other := join(t, o, "s-c", "carol", "attic")

	o.OnData("s-a", []byte(`{"type":"chat"}`))

	var f core.DataFrame
	req.NoError(bob.last(&f))
	req.Equal(core.FrameData, f.Type)
	req.Equal("alice", f.From)
	req.Equal(`{"type":"chat"}`, string(f.Payload))
	req.NotContains(alice.types(), core.FrameData)
	req.Empty(other.types())
}

func TestUpdateMetadata_Pushes_To_Everyone(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	alice := join(t, o, "s-a", "alice", "lobby")
	bob := join(t, o, "s-b", "bob", "lobby")

	err := o.UpdateMetadata("lobby", `{"seats":[]}`)

	req.NoError(err)
	for _, c := range []*captureConn{alice, bob} {
		var f core.MetadataFrame
		req.NoError(c.last(&f))
		req.Equal(core.FrameMetadata, f.Type)
		req.Equal(`{"seats":[]}`, f.Metadata)
	}
	room, _ := o.Rooms.GetRoom("lobby")
	req.Equal(`{"seats":[]}`, room.Metadata())

	req.ErrorIs(o.UpdateMetadata("ghost", "{}"), ErrRoomNotFound)
}

func TestKickBySID_Announces_Leave(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	alice := join(t, o, "s-a", "alice", "lobby")
	join(t, o, "s-b", "bob", "lobby")

	o.KickBySID("s-b")

	var f core.ParticipantLeftFrame
	req.NoError(alice.last(&f))
	req.Equal(domain.UserID("bob"), f.Identity)
	room, _ := o.Rooms.GetRoom("lobby")
	req.Equal(1, room.MemberCount())
	_, _, ok := o.Registry.RoomOf("s-b")
	req.False(ok)
}

func TestJoin_Moves_Between_Rooms(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	join(t, o, "s-a", "alice", "lobby")

	_, ok := o.Join("s-a", "attic")

	req.True(ok)
	lobby, _ := o.Rooms.GetRoom("lobby")
	req.Equal(0, lobby.MemberCount())
	name, _, _ := o.Registry.RoomOf("s-a")
	req.Equal(domain.RoomName("attic"), name)
}

func TestSlowConsumer_Is_Cancelled(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	join(t, o, "s-a", "alice", "lobby")

	conn := &captureConn{full: true}
	sess := core.NewMemberSession(domain.NewMember(domain.Identity{UserID: "bob", Name: "bob"}, time.Now()))
	sess.UpdateSignal(conn)
	cancelled := make(chan struct{})
	o.Registry.BindSignal("s-b", sess, func() { close(cancelled) })
	_, ok := o.Join("s-b", "lobby")
	req.True(ok)

	o.OnData("s-a", []byte("x"))

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		req.Fail("slow consumer not cancelled")
	}
}

func TestEvictRoom_Drops_Room(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator()
	join(t, o, "s-a", "alice", "lobby")

	o.EvictRoom("lobby")

	_, ok := o.Rooms.GetRoom("lobby")
	req.False(ok)
	_, _, ok = o.Registry.RoomOf("s-a")
	req.False(ok)
}
