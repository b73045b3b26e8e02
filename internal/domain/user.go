// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUserIDLen   = 64
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUserIDEmpty     = errors.New("user id empty")
	ErrUserIDTooLong   = errors.New("user id too long")
)

type UserID string

// Identity is the part of a user stamped on every broadcast event.
type Identity struct {
	UserID UserID `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in callers.
func NewIdentity(id, name, avatar string) (Identity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Identity{}, ErrUserIDEmpty
	}
	if len(id) > MaxUserIDLen {
		return Identity{}, ErrUserIDTooLong
	}
	if err := validUsername(name); err != nil {
		return Identity{}, err
	}
	return Identity{UserID: UserID(id), Name: name, Avatar: avatar}, nil
}

// User is a participant as seen by one client. Values are duplicated per seat
// and per message, so equality is by UserID only.
type User struct {
	Identity
	RoomID   string
	Metadata string

	// Muted is the seat-level moderation flag carried in room metadata.
	Muted bool

	MicOn     bool
	CameraOn  bool
	StreamID  string
	AvatarURL string
}

func NewUser(id Identity, roomID string) *User {
	return &User{Identity: id, RoomID: roomID, AvatarURL: id.Avatar}
}

func (u *User) SetUsername(username string) error {
	if err := validUsername(username); err != nil {
		return err
	}
	u.Name = username
	return nil
}

// Is reports whether u refers to the user with the given id.
func (u *User) Is(id UserID) bool {
	return u != nil && u.UserID == id
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func validUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
