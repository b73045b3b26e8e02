package core

import (
	"maps"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/voiceroom/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room     *domain.Room
	mu       sync.RWMutex
	metadata string
	bySID    map[SessionID]MemberSession
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:  room,
		bySID: make(map[SessionID]MemberSession),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) Metadata() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metadata
}

func (r *roomImpl) SetMetadata(metadata string) {
	r.mu.Lock()
	r.metadata = metadata
	r.mu.Unlock()
	log.Debug().Str("module", "core.room").Str("room", string(r.room.Name)).Int("bytes", len(metadata)).Msg("metadata replaced")
}

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) Members() map[SessionID]MemberSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.bySID)
}

func (r *roomImpl) AddMember(sid SessionID, ms MemberSession) {
	u := ms.Meta().User.UserID
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySID[sid] = ms
	log.Info().Str("module", "core.room").Str("sid", string(sid)).Str("user", string(u)).Msg("member added")
}

func (r *roomImpl) RemoveMember(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bySID, sid)
	log.Info().Str("module", "core.room").Str("sid", string(sid)).Msg("member removed")
}

func (r *roomImpl) Broadcast(from SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, m := range r.bySID {
		if from != "" && sid == from {
			continue
		}
		sc := m.Signal()
		if sc == nil {
			continue
		}
		if err := sc.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) Participants() []domain.Participant {
	r.mu.RLock()
	out := make([]domain.Participant, 0, len(r.bySID))
	for _, ms := range r.bySID {
		out = append(out, ms.Meta().Participant())
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}
