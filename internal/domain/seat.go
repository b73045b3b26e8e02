package domain

// Seat is a slot in the room layout holding at most one user.
// Index never changes after creation and equals the seat's position
// in the owning registry.
type Seat struct {
	Index  int
	Row    int
	Column int
	Locked bool
	User   *User
}

func NewSeat(index, row, column int) *Seat {
	return &Seat{Index: index, Row: row, Column: column}
}

func (s *Seat) Empty() bool { return s.User == nil }

// OccupiedBy reports whether the seat currently holds the given user.
func (s *Seat) OccupiedBy(id UserID) bool { return s.User.Is(id) }

// Snapshot returns a detached copy that is safe to hand to readers.
func (s *Seat) Snapshot() Seat {
	c := *s
	c.User = s.User.Clone()
	return c
}
