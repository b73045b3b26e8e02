package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	router "github.com/dkeye/voiceroom/internal/adapters/http"
	"github.com/dkeye/voiceroom/internal/adapters/wsrtc"
	"github.com/dkeye/voiceroom/internal/app"
	"github.com/dkeye/voiceroom/internal/app/orch"
	"github.com/dkeye/voiceroom/internal/app/sfu"
	"github.com/dkeye/voiceroom/internal/backend"
	"github.com/dkeye/voiceroom/internal/config"
	"github.com/dkeye/voiceroom/internal/domain"
	"github.com/dkeye/voiceroom/internal/session"
)

const (
	waitFor = 5 * time.Second
	tick    = 20 * time.Millisecond
)

type testServer struct {
	srv  *httptest.Server
	orch *orch.Orchestrator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.ServerConfig{
		Mode:         "test",
		Secret:       "test-secret-123",
		AppKey:       "app",
		TokenTTL:     time.Hour,
		ReadLimit:    1 << 16,
		PingPeriod:   time.Minute,
		DefaultSeats: 8,
		RateLimit:    100,
		RateInterval: time.Second,
	}
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Policy:   app.NewSlowConsumerPolicy(3),
		Relays:   sfu.NewRelayManager(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(router.SetupRouter(ctx, cfg, o, app.NewTokenIssuer(cfg.Secret, cfg.TokenTTL)))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &testServer{srv: srv, orch: o}
}

func (s *testServer) signalURL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/rtc"
}

func (s *testServer) join(t *testing.T, userID, roomID string) (*session.Session, *session.Room) {
	t.Helper()
	logger := zerolog.Nop()
	sess := session.New(session.Options{
		Backend:      backend.New(backend.Options{BaseURL: s.srv.URL, AppKey: "app", Logger: &logger}),
		Transport:    wsrtc.New(wsrtc.Options{Logger: &logger}),
		TransportURL: s.signalURL(),
		Layout:       domain.LayoutForCount(8, 4),
		Logger:       &logger,
	})
	identity, err := domain.NewIdentity(userID, strings.ToUpper(userID[:1])+userID[1:], "avatar-"+userID)
	require.NoError(t, err)
	room, err := sess.Connect(context.Background(), identity, roomID)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close(context.Background()) })
	return sess, room
}

func TestRoom_Seat_And_Chat_Flow(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	srv := newTestServer(t)

	// Given two members of the same room
	_, alice := srv.join(t, "alice", "lobby")
	_, bob := srv.join(t, "bob", "lobby")

	req.Eventually(func() bool { return len(alice.Participants()) == 2 }, waitFor, tick)
	req.Equal(domain.UserID("alice"), alice.Participants()[0].Identity)

	// When alice takes a seat
	req.NoError(alice.TakeSeat(ctx, 2))

	// Then bob converges through the metadata push
	req.Eventually(func() bool {
		seats := bob.Seats()
		return len(seats) == 8 && seats[2].User != nil && seats[2].User.UserID == "alice"
	}, waitFor, tick)
	req.True(alice.OnMic())

	// When alice chats
	req.NoError(alice.SendMessage(ctx, "hi"))

	// Then bob gets it once and alice is not echoed
	req.Eventually(func() bool { return len(bob.Messages()) == 1 }, waitFor, tick)
	req.Equal("hi", bob.Messages()[0].Message)
	req.Equal(domain.UserID("alice"), bob.Messages()[0].User.UserID)
	req.Len(alice.Messages(), 1)

	// When bob removes alice from her seat
	req.NoError(bob.RemoveUserFromSeat(ctx, 2))

	// Then alice's seat is empty and her mic closes
	req.Eventually(func() bool { return !alice.OnMic() }, waitFor, tick)
	req.Eventually(func() bool { return alice.Seats()[2].User == nil }, waitFor, tick)
}

func TestRoom_Leave_Updates_Roster(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	_, alice := srv.join(t, "alice", "stage")
	bobSession, _ := srv.join(t, "bob", "stage")
	req.Eventually(func() bool { return len(alice.Participants()) == 2 }, waitFor, tick)

	req.NoError(bobSession.Close(context.Background()))

	req.Eventually(func() bool { return len(alice.Participants()) == 1 }, waitFor, tick)
	room, ok := srv.orch.Rooms.GetRoom("stage")
	req.True(ok)
	req.Eventually(func() bool { return room.MemberCount() == 1 }, waitFor, tick)
}

func TestRooms_REST_Errors(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	// wrong app key
	q := url.Values{"identity": {"u1"}, "room": {"r1"}, "appKey": {"nope"}}
	resp, err := http.Get(srv.srv.URL + "/rooms/token?" + q.Encode())
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusForbidden, resp.StatusCode)
	var body struct {
		Message string `json:"message"`
	}
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Equal("invalid app key", body.Message)

	// metadata for an unknown room
	logger := zerolog.Nop()
	client := backend.New(backend.Options{BaseURL: srv.srv.URL, AppKey: "app", Logger: &logger})
	err = client.UpdateRoomMetadata(context.Background(), "ghost", `{"seats":[]}`)
	be, ok := backend.IsBackendError(err)
	req.True(ok)
	req.Equal(http.StatusNotFound, be.Status)

	// create-room seeds empty seats
	created, err := client.CreateRoom(context.Background(), "hall")
	req.NoError(err)
	req.NotEmpty(created.SID)
	room, ok := srv.orch.Rooms.GetRoom("hall")
	req.True(ok)
	req.Contains(room.Metadata(), `"seats"`)
}

func TestSignal_Rejects_Bad_Token(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)
	logger := zerolog.Nop()

	tr := wsrtc.New(wsrtc.Options{Logger: &logger, HandshakeTimeout: time.Second})
	err := tr.Connect(context.Background(), srv.signalURL(), "not-a-jwt")

	req.Error(err)
	req.Empty(tr.Participants())
}
