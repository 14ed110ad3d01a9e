package session

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// CookieName is the cookie carrying the session token.
const CookieName = "vidscribe_session"

const issuer = "vidscribe"

// Identity issues and verifies signed session tokens. The token only
// names the session; all state stays in the Store.
type Identity struct {
	secret []byte
	ttl    time.Duration
}

// NewIdentity returns an Identity signing with secret. An empty secret
// gets a random one, so tokens do not survive a restart.
func NewIdentity(secret string, ttl time.Duration) *Identity {
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
	}
	return &Identity{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed token for sessionID.
func (i *Identity) Issue(sessionID string, now time.Time) (string, error) {
	claims := jwt.StandardClaims{
		Id:       sessionID,
		Issuer:   issuer,
		IssuedAt: now.Unix(),
	}
	if i.ttl > 0 {
		claims.ExpiresAt = now.Add(i.ttl).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}
	return signed, nil
}

// Verify returns the session id inside a valid token.
func (i *Identity) Verify(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "parse session token")
	}
	if !token.Valid || claims.Id == "" || claims.Issuer != issuer {
		return "", errors.New("invalid session token")
	}
	return claims.Id, nil
}
