package signal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/app"
	"github.com/dkeye/voiceroom/internal/app/orch"
	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type Options struct {
	ReadLimit  int64
	PingPeriod time.Duration
	RTC        webrtc.Configuration
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	Tokens  *app.TokenIssuer
	Limiter *RoomRateLimiter
	opts    Options
}

func NewSignalWSController(o *orch.Orchestrator, tokens *app.TokenIssuer, limiter *RoomRateLimiter, opts Options) *SignalWSController {
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = 54 * time.Second
	}
	return &SignalWSController{Orch: o, Tokens: tokens, Limiter: limiter, opts: opts}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// bearer reads the join token from the query or the Authorization header.
func bearer(c *gin.Context) string {
	return bearerFrom(c.Query("access_token"), c.GetHeader("Authorization"))
}

// bearerFrom returns the access_token query value, else the bearer token of
// the Authorization header.
func bearerFrom(query, header string) string {
	if query != "" {
		return query
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return token
}

// HandleSignal authenticates the join token, upgrades the connection and
// puts the member into the token's room.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	claims, err := ctl.Tokens.Validate(bearer(c))
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("rejected join token")
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}
	sid := core.SessionID(c.GetString("client_token") + "/" + claims.Identity)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", claims.Room).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.opts.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 64),
	}

	identity := domain.Identity{UserID: domain.UserID(claims.Identity), Name: claims.Name}
	sess := core.NewMemberSession(domain.NewMember(identity, time.Now())).UpdateSignal(conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.BindSignal(sid, sess, cancel)

	room, ok := ctl.Orch.Join(sid, domain.RoomName(claims.Room))
	if !ok {
		cancel()
		conn.Close()
		return
	}
	ctl.sendRoomState(conn, room)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, sess, conn)
}

// disconnect releases everything sid holds unless a newer connection took
// the same sid over.
func (ctl *SignalWSController) disconnect(sid core.SessionID, sess core.MemberSession) {
	if !ctl.Orch.Registry.Owns(sid, sess) {
		return
	}
	ctl.Orch.KickBySID(sid)
	ctl.Orch.Registry.Unbind(sid)
}
