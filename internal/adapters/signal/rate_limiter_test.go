package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoomRateLimiter_Sliding_Window(t *testing.T) {
	req := require.New(t)
	rl := NewRoomRateLimiter(2, time.Second)
	now := time.Unix(100, 0)
	rl.now = func() time.Time { return now }

	// two messages fit the window, the third does not
	req.True(rl.Allow("alice"))
	req.True(rl.Allow("alice"))
	req.False(rl.Allow("alice"))

	// other users have their own budget
	req.True(rl.Allow("bob"))

	// once the window slides the budget is back
	now = now.Add(1100 * time.Millisecond)
	req.True(rl.Allow("alice"))
}

func TestBearer_Reads_Query_Or_Header(t *testing.T) {
	req := require.New(t)
	req.Equal("abc", bearerFrom("abc", ""))
	req.Equal("xyz", bearerFrom("", "Bearer xyz"))
	req.Empty(bearerFrom("", "Basic xyz"))
}
