// Package event implements the tagged JSON messages exchanged over the
// media data channel.
package event

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/voiceroom/internal/domain"
)

// DecodeError reports a malformed incoming event or metadata payload.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %v", e.Reason, e.Err)
	}
	return "decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErr(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}

// Event is one broadcast message. User and RoomID are stamped by the sender;
// the remaining fields are event specific.
type Event struct {
	Code      Code
	User      domain.Identity
	RoomID    string
	Message   string
	SeatIndex int
	UserID    domain.UserID
	Gift      string
}

type wireUser struct {
	UserID *string `json:"userId"`
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

type wireEvent struct {
	Event     *int      `json:"event"`
	User      *wireUser `json:"user"`
	RoomID    *string   `json:"roomId"`
	Message   *string   `json:"message,omitempty"`
	SeatIndex *int      `json:"seatIndex,omitempty"`
	UserID    *string   `json:"userId,omitempty"`
	Gift      *string   `json:"gift,omitempty"`
}

// Encode serializes e to its UTF-8 JSON wire form.
func Encode(e Event) ([]byte, error) {
	code := int(e.Code)
	uid, name, avatar := string(e.User.UserID), e.User.Name, e.User.Avatar
	w := wireEvent{
		Event:  &code,
		User:   &wireUser{UserID: &uid, Name: &name, Avatar: &avatar},
		RoomID: &e.RoomID,
	}
	switch e.Code {
	case SendMessage:
		w.Message = &e.Message
	case InviteUserToTakeMic, RemoveUserFromSeat:
		target := string(e.UserID)
		w.SeatIndex = &e.SeatIndex
		w.UserID = &target
	case RequestTakeMic:
		w.SeatIndex = &e.SeatIndex
	case SendGift:
		w.Gift = &e.Gift
	}
	return json.Marshal(w)
}

// Decode parses one incoming payload. Any missing envelope field or missing
// event-specific field yields a *DecodeError.
func Decode(data []byte) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return Event{}, decodeErr("invalid json", err)
	}
	if w.Event == nil {
		return Event{}, decodeErr("missing event", nil)
	}
	if w.User == nil || w.User.UserID == nil || w.User.Name == nil || w.User.Avatar == nil {
		return Event{}, decodeErr("missing user", nil)
	}
	if w.RoomID == nil {
		return Event{}, decodeErr("missing roomId", nil)
	}

	e := Event{
		Code: Code(*w.Event),
		User: domain.Identity{
			UserID: domain.UserID(*w.User.UserID),
			Name:   *w.User.Name,
			Avatar: *w.User.Avatar,
		},
		RoomID: *w.RoomID,
	}

	switch e.Code {
	case SendMessage:
		if w.Message == nil {
			return Event{}, decodeErr("sendMessage without message", nil)
		}
		e.Message = *w.Message
	case InviteUserToTakeMic:
		if w.SeatIndex == nil || w.UserID == nil {
			return Event{}, decodeErr("inviteUserToTakeMic without seatIndex or userId", nil)
		}
	case RequestTakeMic:
		if w.SeatIndex == nil {
			return Event{}, decodeErr("requestTakeMic without seatIndex", nil)
		}
	case RemoveUserFromSeat:
		if w.UserID == nil {
			return Event{}, decodeErr("removeUserFromSeat without userId", nil)
		}
	case SendGift:
		if w.Gift == nil {
			return Event{}, decodeErr("sendGift without gift", nil)
		}
		e.Gift = *w.Gift
	}
	if w.SeatIndex != nil {
		e.SeatIndex = *w.SeatIndex
	}
	if w.UserID != nil {
		e.UserID = domain.UserID(*w.UserID)
	}
	return e, nil
}
