package core

import (
	"context"

	"github.com/pion/webrtc/v4"
)

// MediaConnection is the server side of one member's peer connection.
type MediaConnection interface {
	// Start configures internal callbacks and binds the connection lifetime to ctx.
	Start(ctx context.Context) error
	// Close should stop all underlying media resources.
	Close()
	IsClosed() bool
	// AddICECandidate applies a remote ICE candidate.
	AddICECandidate(webrtc.ICECandidateInit) error
	// Answer applies a remote offer, attaches the outbound tracks to the
	// offered transceivers and returns the local answer.
	Answer(offer webrtc.SessionDescription, outbound []*webrtc.TrackLocalStaticRTP) (*webrtc.SessionDescription, error)
	// OnICECandidate sets a callback for newly gathered local ICE candidates.
	OnICECandidate(func(webrtc.ICECandidateInit))
	// OnTrack sets a callback that will be invoked when a new remote track arrives.
	OnTrack(func(ctx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver))
	// OnClosed sets a callback for cleanup media session.
	OnClosed(func())
}
