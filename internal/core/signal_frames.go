package core

import (
	"encoding/json"

	"github.com/dkeye/voiceroom/internal/domain"
)

// Signal frame types. Both sides of the /rtc socket speak JSON objects with
// a "type" discriminator.
const (
	FrameData              = "data"
	FramePing              = "ping"
	FramePong              = "pong"
	FrameOffer             = "offer"
	FrameAnswer            = "answer"
	FrameCandidate         = "candidate"
	FrameLeave             = "leave"
	FrameRoomState         = "room_state"
	FrameMetadata          = "metadata"
	FrameParticipantJoined = "participant_joined"
	FrameParticipantLeft   = "participant_left"
	FrameError             = "error"
)

// Envelope is decoded first to pick the concrete frame.
type Envelope struct {
	Type string `json:"type"`
}

type DataFrame struct {
	Type    string `json:"type"`
	From    string `json:"from,omitempty"`
	Payload []byte `json:"payload"`
}

type SDPFrame struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

type CandidateFrame struct {
	Type          string  `json:"type"`
	Candidate     string  `json:"candidate"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`
}

type RoomStateFrame struct {
	Type         string               `json:"type"`
	Room         domain.RoomName      `json:"room"`
	SID          domain.RoomID        `json:"sid"`
	Metadata     string               `json:"metadata"`
	Participants []domain.Participant `json:"participants"`
}

type MetadataFrame struct {
	Type     string `json:"type"`
	Metadata string `json:"metadata"`
}

type ParticipantJoinedFrame struct {
	Type        string             `json:"type"`
	Participant domain.Participant `json:"participant"`
}

type ParticipantLeftFrame struct {
	Type     string        `json:"type"`
	Identity domain.UserID `json:"identity"`
}

type ErrorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// EncodeFrame marshals one of the frame structs above.
func EncodeFrame(v any) (Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}
