package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, setup func(r *gin.Engine)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	logger := zerolog.Nop()
	return New(Options{BaseURL: srv.URL, AppKey: "app", HTTPClient: srv.Client(), Logger: &logger})
}

func TestClient_CreateRoom(t *testing.T) {
	req := require.New(t)

	// Given a backend that echoes the requested name
	var got string
	c := newServer(t, func(r *gin.Engine) {
		r.POST("/rooms/create-room", func(ctx *gin.Context) {
			var body struct {
				RoomName string `json:"roomName"`
			}
			req.NoError(ctx.ShouldBindJSON(&body))
			got = body.RoomName
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"sid": "RM_1", "name": body.RoomName}})
		})
	})

	// When
	created, err := c.CreateRoom(context.Background(), "lobby")

	// Then
	req.NoError(err)
	req.Equal("lobby", got)
	req.Equal("RM_1", created.SID)
	req.EqualValues("lobby", created.Name)
}

func TestClient_JoinToken_Sends_Query(t *testing.T) {
	req := require.New(t)
	c := newServer(t, func(r *gin.Engine) {
		r.GET("/rooms/token", func(ctx *gin.Context) {
			req.Equal("u1", ctx.Query("identity"))
			req.Equal("lobby", ctx.Query("room"))
			req.Equal("app", ctx.Query("appKey"))
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"newRoomName": "lobby", "token": "tok"}})
		})
	})

	tok, err := c.JoinToken(context.Background(), "u1", "lobby")

	req.NoError(err)
	req.Equal("tok", tok.Token)
	req.EqualValues("lobby", tok.RoomName)
}

func TestClient_UpdateRoomMetadata(t *testing.T) {
	req := require.New(t)
	var roomID, metadata string
	c := newServer(t, func(r *gin.Engine) {
		r.PUT("/rooms/room-metadata", func(ctx *gin.Context) {
			var body struct {
				RoomID   string `json:"roomId"`
				Metadata string `json:"metadata"`
			}
			req.NoError(ctx.ShouldBindJSON(&body))
			roomID, metadata = body.RoomID, body.Metadata
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{}})
		})
	})

	req.NoError(c.UpdateRoomMetadata(context.Background(), "lobby", `{"seats":[]}`))
	req.Equal("lobby", roomID)
	req.Equal(`{"seats":[]}`, metadata)
}

func TestClient_Error_Taxonomy(t *testing.T) {
	c := newServer(t, func(r *gin.Engine) {
		r.GET("/rooms/token", func(ctx *gin.Context) {
			switch ctx.Query("room") {
			case "message":
				ctx.JSON(http.StatusForbidden, gin.H{"message": "bad app key"})
			case "bare":
				ctx.String(http.StatusInternalServerError, "boom")
			case "html":
				ctx.String(http.StatusOK, "<html></html>")
			case "array":
				ctx.String(http.StatusOK, `[1,2]`)
			case "empty":
				ctx.JSON(http.StatusOK, gin.H{"data": gin.H{}})
			}
		})
	})

	cases := []struct {
		room string
		want error
	}{
		{"bare", ErrInvalidResponse},
		{"html", ErrInvalidJSON},
		{"array", ErrInvalidJSON},
		{"empty", ErrInvalidJSON},
	}
	for _, tc := range cases {
		t.Run(tc.room, func(t *testing.T) {
			_, err := c.JoinToken(context.Background(), "u1", tc.room)
			require.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("message", func(t *testing.T) {
		req := require.New(t)
		_, err := c.JoinToken(context.Background(), "u1", "message")
		be, ok := IsBackendError(err)
		req.True(ok)
		req.Equal(http.StatusForbidden, be.Status)
		req.Equal("bad app key", be.Message)
	})
}

func TestClient_Invalid_URL_And_Transport(t *testing.T) {
	req := require.New(t)
	logger := zerolog.Nop()

	c := New(Options{BaseURL: "not a url", Logger: &logger})
	_, err := c.CreateRoom(context.Background(), "lobby")
	req.ErrorIs(err, ErrInvalidURL)

	// Given a server that is already gone
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c = New(Options{BaseURL: srv.URL, Logger: &logger})

	err = c.UpdateRoomMetadata(context.Background(), "lobby", "{}")
	req.ErrorIs(err, ErrTransport)
	req.False(errors.Is(err, ErrInvalidResponse))
}
