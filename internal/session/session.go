package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no session token")
	ErrInvalidToken = errors.New("invalid session token")
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID      uint
	DisplayName string
	Roles       []string
}

type claims struct {
	DisplayName string   `json:"name"`
	Roles       []string `json:"roles"`
	jwt.RegisteredClaims
}

// Manager issues and parses signed session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the principal's id, display name and roles.
func (m *Manager) Issue(p Principal) (string, error) {
	now := time.Now()
	c := claims{
		DisplayName: p.DisplayName,
		Roles:       p.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(p.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, &c).SignedString(m.secret)
}

// Parse validates a token and returns the principal it carries.
func (m *Manager) Parse(token string) (*Principal, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &Principal{UserID: uint(id), DisplayName: c.DisplayName, Roles: c.Roles}, nil
}

type ctxKey struct{}

// WithPrincipal attaches the principal to the request context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the request's principal, if any.
func FromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ctxKey{}).(*Principal)
	return p, ok && p != nil
}
