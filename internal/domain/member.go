package domain

import "time"

// Member represents user's participation meta for a room.
// No transport or lifecycle logic here.
type Member struct {
	User     Identity
	JoinedAt time.Time
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(user Identity, joinedAt time.Time) *Member {
	return &Member{User: user, JoinedAt: joinedAt}
}

func (m *Member) Participant() Participant {
	return Participant{Identity: m.User.UserID, Name: m.User.Name, JoinedAt: m.JoinedAt}
}
