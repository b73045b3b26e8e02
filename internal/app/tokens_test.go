package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_Issue_And_Validate(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("secret-secret", time.Hour)

	raw, err := issuer.Issue("alice", "Alice", "lobby")
	req.NoError(err)

	claims, err := issuer.Validate(raw)
	req.NoError(err)
	req.Equal("alice", claims.Identity)
	req.Equal("lobby", claims.Room)
	req.Equal("alice", claims.Subject)
	req.Equal("Alice", claims.Name)
}

func TestTokenIssuer_Rejects_Expired(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("secret-secret", time.Minute)
	start := time.Now()
	issuer.now = func() time.Time { return start }

	raw, err := issuer.Issue("alice", "Alice", "lobby")
	req.NoError(err)

	issuer.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = issuer.Validate(raw)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestTokenIssuer_Rejects_Foreign_Secret(t *testing.T) {
	req := require.New(t)

	raw, err := NewTokenIssuer("other-secret", time.Hour).Issue("alice", "Alice", "lobby")
	req.NoError(err)

	_, err = NewTokenIssuer("secret-secret", time.Hour).Validate(raw)
	req.ErrorIs(err, ErrInvalidToken)

	_, err = NewTokenIssuer("secret-secret", time.Hour).Validate("garbage")
	req.ErrorIs(err, ErrInvalidToken)
}
