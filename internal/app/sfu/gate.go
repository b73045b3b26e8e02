package sfu

import (
	"github.com/dkeye/voiceroom/internal/core"
	"github.com/dkeye/voiceroom/internal/domain"
	"github.com/dkeye/voiceroom/internal/seats"
)

// Route is where a seated speaker is heard.
type Route struct {
	Slot  int
	Muted bool
}

// Plan maps the speakers present in members to the seat they hold in the
// parsed metadata. Members without a seat are absent from the result. A
// user holding several seats is routed to the lowest one.
func Plan(states []seats.SeatState, members map[domain.UserID]core.SessionID) map[core.SessionID]Route {
	plan := make(map[core.SessionID]Route)
	for _, st := range states {
		if st.User == nil || st.Index < 0 {
			continue
		}
		sid, ok := members[st.User.UserID]
		if !ok {
			continue
		}
		if prev, ok := plan[sid]; ok && prev.Slot <= st.Index {
			continue
		}
		plan[sid] = Route{Slot: st.Index, Muted: st.User.Muted}
	}
	return plan
}
