package seats

import (
	"encoding/json"
	"strings"

	"github.com/dkeye/voiceroom/internal/domain"
	"github.com/dkeye/voiceroom/internal/event"
)

type userJSON struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	RoomID  string `json:"roomId"`
	IsMuted bool   `json:"isMuted"`
}

type seatJSON struct {
	SeatIndex   int       `json:"seatIndex"`
	RowIndex    int       `json:"rowIndex"`
	ColumnIndex int       `json:"columnIndex"`
	IsLocked    bool      `json:"isLocked"`
	CurrentUser *userJSON `json:"currentUser"`
}

type metadataJSON struct {
	Seats []seatJSON `json:"seats"`
}

// incoming blobs may omit fields; pointers tell absent from zero.
type seatInJSON struct {
	SeatIndex   *int      `json:"seatIndex"`
	RowIndex    int       `json:"rowIndex"`
	ColumnIndex int       `json:"columnIndex"`
	IsLocked    *bool     `json:"isLocked"`
	CurrentUser *userJSON `json:"currentUser"`
}

type metadataInJSON struct {
	Seats *[]seatInJSON `json:"seats"`
}

// SeatState is one seat entry of a parsed metadata blob.
// Locked is nil when the blob did not carry the flag.
type SeatState struct {
	Index  int
	Row    int
	Column int
	Locked *bool
	User   *domain.User
}

// Seat materializes the state as a standalone seat value.
func (s SeatState) Seat() domain.Seat {
	seat := domain.Seat{Index: s.Index, Row: s.Row, Column: s.Column, User: s.User.Clone()}
	if s.Locked != nil {
		seat.Locked = *s.Locked
	}
	return seat
}

// LooksLikeSeats is a cheap pre-filter for metadata that carries seat data.
func LooksLikeSeats(metadata string) bool {
	return metadata != "" && strings.Contains(metadata, `"seats"`)
}

// Marshal serializes the full seat sequence to the room metadata format.
func Marshal(seats []*domain.Seat) (string, error) {
	out := metadataJSON{Seats: make([]seatJSON, 0, len(seats))}
	for _, s := range seats {
		sj := seatJSON{
			SeatIndex:   s.Index,
			RowIndex:    s.Row,
			ColumnIndex: s.Column,
			IsLocked:    s.Locked,
		}
		if u := s.User; u != nil {
			sj.CurrentUser = &userJSON{
				UserID:  string(u.UserID),
				Name:    u.Name,
				Avatar:  u.Avatar,
				RoomID:  u.RoomID,
				IsMuted: u.Muted,
			}
		}
		out.Seats = append(out.Seats, sj)
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parse decodes a metadata blob. Entries without a seatIndex are skipped.
func Parse(metadata string) ([]SeatState, error) {
	var in metadataInJSON
	if err := json.Unmarshal([]byte(metadata), &in); err != nil {
		return nil, &event.DecodeError{Reason: "invalid seat metadata", Err: err}
	}
	if in.Seats == nil {
		return nil, &event.DecodeError{Reason: "metadata without seats"}
	}
	out := make([]SeatState, 0, len(*in.Seats))
	for _, s := range *in.Seats {
		if s.SeatIndex == nil {
			continue
		}
		st := SeatState{
			Index:  *s.SeatIndex,
			Row:    s.RowIndex,
			Column: s.ColumnIndex,
			Locked: s.IsLocked,
		}
		if u := s.CurrentUser; u != nil {
			st.User = &domain.User{
				Identity: domain.Identity{
					UserID: domain.UserID(u.UserID),
					Name:   u.Name,
					Avatar: u.Avatar,
				},
				RoomID:    u.RoomID,
				Muted:     u.IsMuted,
				AvatarURL: u.Avatar,
			}
		}
		out = append(out, st)
	}
	return out, nil
}
