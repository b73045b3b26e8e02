// Package backend is the HTTP RoomBackend: room creation, join tokens and
// the room metadata write-back.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/domain"
)

const (
	createRoomPath   = "rooms/create-room"
	roomMetadataPath = "rooms/room-metadata"
	tokenPath        = "rooms/token"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

type Options struct {
	BaseURL    string
	AppKey     string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

type Client struct {
	base   string
	appKey string
	http   *http.Client
	log    zerolog.Logger
}

func New(opts Options) *Client {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		base:   strings.TrimRight(opts.BaseURL, "/") + "/",
		appKey: opts.AppKey,
		http:   hc,
		log:    logger.With().Str("module", "backend").Logger(),
	}
}

type createRoomRequest struct {
	RoomName string `json:"roomName"`
}

type createRoomResponse struct {
	Data *struct {
		SID  string `json:"sid"`
		Name string `json:"name"`
	} `json:"data"`
}

type metadataRequest struct {
	RoomID   string `json:"roomId"`
	Metadata string `json:"metadata"`
}

type tokenResponse struct {
	Data *struct {
		NewRoomName string `json:"newRoomName"`
		Token       string `json:"token"`
	} `json:"data"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *Client) CreateRoom(ctx context.Context, roomName string) (domain.CreatedRoom, error) {
	var out createRoomResponse
	if err := c.do(ctx, http.MethodPost, createRoomPath, nil, createRoomRequest{RoomName: roomName}, &out); err != nil {
		return domain.CreatedRoom{}, err
	}
	if out.Data == nil {
		return domain.CreatedRoom{}, fmt.Errorf("%w: missing data", ErrInvalidJSON)
	}
	name := out.Data.Name
	if name == "" {
		name = roomName
	}
	return domain.CreatedRoom{SID: out.Data.SID, Name: domain.RoomName(name)}, nil
}

func (c *Client) UpdateRoomMetadata(ctx context.Context, roomID, metadata string) error {
	return c.do(ctx, http.MethodPut, roomMetadataPath, nil, metadataRequest{RoomID: roomID, Metadata: metadata}, nil)
}

func (c *Client) JoinToken(ctx context.Context, identity, roomID string) (domain.JoinToken, error) {
	q := url.Values{}
	q.Set("identity", identity)
	q.Set("room", roomID)
	q.Set("appKey", c.appKey)

	var out tokenResponse
	if err := c.do(ctx, http.MethodGet, tokenPath, q, nil, &out); err != nil {
		return domain.JoinToken{}, err
	}
	if out.Data == nil || out.Data.Token == "" {
		return domain.JoinToken{}, fmt.Errorf("%w: missing token", ErrInvalidJSON)
	}
	return domain.JoinToken{RoomName: domain.RoomName(out.Data.NewRoomName), Token: out.Data.Token}, nil
}

// do sends one request and decodes a 2xx JSON object body into out when out
// is not nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u, err := url.Parse(c.base + path)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidURL
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return ErrInvalidURL
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			return &BackendError{Status: resp.StatusCode, Message: e.Message}
		}
		return fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}

// IsBackendError reports whether err carries a server message.
func IsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	ok := errors.As(err, &be)
	return be, ok
}
