package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
)

func member(id string) core.MemberSession {
	return core.NewMemberSession(domain.NewMember(domain.Identity{UserID: domain.UserID(id), Name: id}, time.Now()))
}

func TestRegistry_Bind_Join_And_RoomMates(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	a, b, c := member("a"), member("b"), member("c")

	r.BindSignal("s-a", a, nil)
	r.BindSignal("s-b", b, nil)
	r.BindSignal("s-c", c, nil)
	req.True(r.UpdateRoom("s-a", "lobby"))
	req.True(r.UpdateRoom("s-b", "lobby"))
	req.True(r.UpdateRoom("s-c", "hall"))
	req.False(r.UpdateRoom("s-x", "lobby"))

	name, sess, ok := r.RoomOf("s-a")
	req.True(ok)
	req.Equal(domain.RoomName("lobby"), name)
	req.Same(a, sess)

	mates := r.RoomMates("s-a")
	req.Len(mates, 1)
	req.Equal(core.SessionID("s-b"), mates[0].SID)
	req.Len(r.MembersOfRoom("lobby"), 2)

	r.RemoveRoom("s-b")
	_, _, ok = r.RoomOf("s-b")
	req.False(ok)
	req.Empty(r.RoomMates("s-a"))
}

func TestRegistry_Rebind_Cancels_Previous(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	first, second := member("a"), member("a")
	cancelled := false

	r.BindSignal("s-a", first, func() { cancelled = true })
	r.BindSignal("s-a", second, nil)

	req.True(cancelled)
	req.False(r.Owns("s-a", first))
	req.True(r.Owns("s-a", second))

	r.Unbind("s-a")
	_, ok := r.GetSession("s-a")
	req.False(ok)
	req.False(r.Cancel("s-a"))
}

func TestRoomManager_GetOrCreate_And_List(t *testing.T) {
	req := require.New(t)
	m := NewRoomManager()

	lobby := m.GetOrCreate("lobby")
	req.Same(lobby, m.CreateRoom("lobby"))
	m.GetOrCreate("attic")
	lobby.AddMember("s-a", member("a"))

	list := m.List()
	req.Len(list, 2)
	req.Equal(domain.RoomName("attic"), list[0].Name)
	req.Equal(1, list[1].MemberCount)
	req.Equal(lobby.Room().ID, list[1].ID)

	m.StopRoom("lobby")
	_, ok := m.GetRoom("lobby")
	req.False(ok)
}

func TestSlowConsumerPolicy_Kicks_After_MaxDrops(t *testing.T) {
	req := require.New(t)
	p := NewSlowConsumerPolicy(2)
	slow := member("slow")

	req.Equal(DropFrame, p.OnBackPressure(nil, slow))
	req.Equal(DropFrame, p.OnBackPressure(nil, slow))
	req.Equal(KickMember, p.OnBackPressure(nil, slow))

	// counters restart once the member is forgotten
	req.Equal(DropFrame, p.OnBackPressure(nil, slow))
	p.Forget(slow)
	req.Equal(DropFrame, p.OnBackPressure(nil, slow))
	req.Equal(DropFrame, p.OnBackPressure(nil, slow))
}
