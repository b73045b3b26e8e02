package session

import (
	"sync"

	"github.com/dkeye/voiceroom/internal/domain"
)

// Listener receives state changes of a joined room. Callbacks run on the
// goroutine that caused the change and must not block.
type Listener interface {
	OnSeatsChanged(seats []domain.Seat)
	OnChatChanged(messages []domain.ChatMessage)
	OnMicInviteReceived(seatIndex int)
	OnGiftReceived(from domain.Identity, gift string)
	OnMicRequestsChanged(requests []domain.MicRequest)
	OnMicStateChanged(onMic bool)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	SeatsChanged       func(seats []domain.Seat)
	ChatChanged        func(messages []domain.ChatMessage)
	MicInviteReceived  func(seatIndex int)
	GiftReceived       func(from domain.Identity, gift string)
	MicRequestsChanged func(requests []domain.MicRequest)
	MicStateChanged    func(onMic bool)
}

func (f ListenerFuncs) OnSeatsChanged(seats []domain.Seat) {
	if f.SeatsChanged != nil {
		f.SeatsChanged(seats)
	}
}

func (f ListenerFuncs) OnChatChanged(messages []domain.ChatMessage) {
	if f.ChatChanged != nil {
		f.ChatChanged(messages)
	}
}

func (f ListenerFuncs) OnMicInviteReceived(seatIndex int) {
	if f.MicInviteReceived != nil {
		f.MicInviteReceived(seatIndex)
	}
}

func (f ListenerFuncs) OnGiftReceived(from domain.Identity, gift string) {
	if f.GiftReceived != nil {
		f.GiftReceived(from, gift)
	}
}

func (f ListenerFuncs) OnMicRequestsChanged(requests []domain.MicRequest) {
	if f.MicRequestsChanged != nil {
		f.MicRequestsChanged(requests)
	}
}

func (f ListenerFuncs) OnMicStateChanged(onMic bool) {
	if f.MicStateChanged != nil {
		f.MicStateChanged(onMic)
	}
}

type listeners struct {
	mu   sync.RWMutex
	next int
	set  map[int]Listener
}

func newListeners() *listeners {
	return &listeners{set: make(map[int]Listener)}
}

func (ls *listeners) add(l Listener) func() {
	ls.mu.Lock()
	id := ls.next
	ls.next++
	ls.set[id] = l
	ls.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ls.mu.Lock()
			delete(ls.set, id)
			ls.mu.Unlock()
		})
	}
}

func (ls *listeners) each(fn func(Listener)) {
	ls.mu.RLock()
	snapshot := make([]Listener, 0, len(ls.set))
	for _, l := range ls.set {
		snapshot = append(snapshot, l)
	}
	ls.mu.RUnlock()
	for _, l := range snapshot {
		fn(l)
	}
}
