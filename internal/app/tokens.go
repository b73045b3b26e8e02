package app

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dkeye/voiceroom/internal/domain"
)

var ErrInvalidToken = errors.New("invalid join token")

// JoinClaims is what a join token grants: one identity in one room.
type JoinClaims struct {
	Identity string `json:"identity"`
	Name     string `json:"name,omitempty"`
	Room     string `json:"room"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a join token for identity in room. name is the display name
// members see in the roster and may be empty.
func (t *TokenIssuer) Issue(identity, name string, room domain.RoomName) (string, error) {
	now := t.now()
	claims := &JoinClaims{
		Identity: identity,
		Name:     name,
		Room:     string(room),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "voiceroom",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) Validate(raw string) (*JoinClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &JoinClaims{}, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*JoinClaims)
	if !ok || !token.Valid || claims.Identity == "" || claims.Room == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
