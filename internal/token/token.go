package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/saiza/notehub/internal/domain/user"
)

var (
	ErrMalformed = errors.New("token malformed")
	ErrExpired   = errors.New("token expired")
	ErrSignature = errors.New("token signature invalid")
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	JTI   string `json:"jti"`
	jwt.RegisteredClaims
}

// UserID is the token subject.
func (c *Claims) UserID() string {
	return c.Subject
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token asserting the user's identity and role, valid for the
// manager's TTL from now.
func (m *Manager) Issue(userID string, email string, role user.Role) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		Email: email,
		Role:  string(role),
		JTI:   uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return t.SignedString(m.secret)
}

// Validate checks signature and expiry against the current clock and returns
// the embedded claims. No I/O.
func (m *Manager) Validate(raw string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, ErrSignature
		}
		return m.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignature
		case errors.Is(err, jwt.ErrTokenUnverifiable):
			// keyfunc rejected the token, e.g. a non-HMAC alg header
			return nil, ErrSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := t.Claims.(*Claims)

	if !ok || !t.Valid {
		return nil, ErrMalformed
	}

	return claims, nil
}
