package utils // package utils provides helpers for participant token creation

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ParticipantToken represents a signed HS256 JWT identifying a
// matchmaking participant, along with its expiry.  Guest tokens carry a
// "guest_id" claim issued by this service; registered player tokens
// carry a numeric "sub" claim and are normally issued by the account
// service – the helper here exists for tests and local development.
type ParticipantToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewGuestToken builds and signs a token for a guest identity.  The
// guest id is a UUID fabricated at first contact; the token is
// deliberately long-lived (ttlHours, 72h by default) so a guest can
// finish a session and come back without re-registering.
func NewGuestToken(secret, guestID string, ttlHours int) (ParticipantToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"guest_id": guestID,
		"exp":      exp.Unix(),
		"iat":      time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return ParticipantToken{}, err
	}
	return ParticipantToken{Token: signed, Exp: exp}, nil
}

// NewPlayerToken builds and signs a token for a registered player id.
// The claims mirror what the account service issues: subject (sub),
// expiration (exp) and issued at (iat).
func NewPlayerToken(secret string, playerID uint64, ttl time.Duration) (ParticipantToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub": playerID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return ParticipantToken{}, err
	}
	return ParticipantToken{Token: signed, Exp: exp}, nil
}
