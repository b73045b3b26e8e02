package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/app"
	"github.com/dkeye/voiceroom/internal/app/orch"
	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
	"github.com/dkeye/voiceroom/internal/seats"
)

type CreateRoomRequest struct {
	RoomName string `json:"roomName" binding:"required,max=64"`
}

type MetadataRequest struct {
	RoomID   string `json:"roomId" binding:"required"`
	Metadata string `json:"metadata"`
}

type TokenQuery struct {
	Identity string `form:"identity" binding:"required,max=64"`
	Room     string `form:"room" binding:"required,max=64"`
	AppKey   string `form:"appKey"`
	Name     string `form:"name"`
}

type RoomView struct {
	SID             domain.RoomID   `json:"sid"`
	Name            domain.RoomName `json:"name"`
	Metadata        string          `json:"metadata"`
	NumParticipants int             `json:"numParticipants"`
}

type TokenView struct {
	NewRoomName domain.RoomName `json:"newRoomName"`
	Token       string          `json:"token"`
}

type roomsAPI struct {
	orch         *orch.Orchestrator
	tokens       *app.TokenIssuer
	appKey       string
	defaultSeats int
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func (a *roomsAPI) createRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "missing or invalid roomName")
		return
	}
	room := a.ensureRoom(domain.RoomName(req.RoomName))
	c.JSON(http.StatusOK, gin.H{"data": view(room)})
}

func (a *roomsAPI) updateMetadata(c *gin.Context) {
	var req MetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "missing or invalid roomId")
		return
	}
	name := domain.RoomName(req.RoomID)
	if err := a.orch.UpdateMetadata(name, req.Metadata); err != nil {
		if errors.Is(err, orch.ErrRoomNotFound) {
			fail(c, http.StatusNotFound, "room not found")
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("update metadata")
		fail(c, http.StatusInternalServerError, "metadata update failed")
		return
	}
	room, _ := a.orch.Rooms.GetRoom(name)
	c.JSON(http.StatusOK, gin.H{"data": view(room)})
}

func (a *roomsAPI) token(c *gin.Context) {
	var q TokenQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, http.StatusBadRequest, "identity and room are required")
		return
	}
	if q.AppKey != a.appKey {
		fail(c, http.StatusForbidden, "invalid app key")
		return
	}
	room := a.ensureRoom(domain.RoomName(q.Room))
	token, err := a.tokens.Issue(q.Identity, q.Name, room.Room().Name)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		fail(c, http.StatusInternalServerError, "token issue failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": TokenView{NewRoomName: room.Room().Name, Token: token}})
}

func (a *roomsAPI) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": a.orch.Rooms.List()})
}

// ensureRoom returns the room, seeding fresh rooms with empty seats.
func (a *roomsAPI) ensureRoom(name domain.RoomName) core.RoomService {
	room := a.orch.Rooms.GetOrCreate(name)
	if room.Metadata() != "" || a.defaultSeats <= 0 {
		return room
	}
	blob, err := seats.Marshal(seats.EmptySeats(domain.LayoutForCount(a.defaultSeats, domain.DefaultSeatsPerRow)))
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("seed seats")
		return room
	}
	room.SetMetadata(blob)
	return room
}

func view(room core.RoomService) RoomView {
	return RoomView{
		SID:             room.Room().ID,
		Name:            room.Room().Name,
		Metadata:        room.Metadata(),
		NumParticipants: room.MemberCount(),
	}
}
