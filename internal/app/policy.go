package app

import (
	"sync"

	"github.com/dkeye/voiceroom/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a member whose signal queue was full when
// a frame was fanned out to it.
type Policy interface {
	OnBackPressure(room core.RoomService, member core.MemberSession) BackpressureAction
	Forget(member core.MemberSession)
}

// SlowConsumerPolicy drops frames for a lagging member and kicks it after
// MaxDrops drops. Zero MaxDrops kicks on the first drop.
type SlowConsumerPolicy struct {
	MaxDrops int

	mu    sync.Mutex
	drops map[core.MemberSession]int
}

func NewSlowConsumerPolicy(maxDrops int) *SlowConsumerPolicy {
	return &SlowConsumerPolicy{MaxDrops: maxDrops, drops: make(map[core.MemberSession]int)}
}

func (p *SlowConsumerPolicy) OnBackPressure(_ core.RoomService, member core.MemberSession) BackpressureAction {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drops[member]++
	if p.drops[member] > p.MaxDrops {
		delete(p.drops, member)
		return KickMember
	}
	return DropFrame
}

// Forget drops the counters of a member that left.
func (p *SlowConsumerPolicy) Forget(member core.MemberSession) {
	p.mu.Lock()
	delete(p.drops, member)
	p.mu.Unlock()
}
