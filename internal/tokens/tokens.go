package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AditRobertho/eshop-backend/internal/config"
	"github.com/AditRobertho/eshop-backend/internal/logging"
)

// DefaultTTL is how long an issued token stays valid when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// ErrInvalidToken is the only error Validate hands back to callers. The exact
// cause is logged, never returned.
var ErrInvalidToken = errors.New("invalid token")

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func (c *Claims) Role() Role {
	if c.IsAdmin {
		return RoleAdmin
	}
	return RoleUser
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source, mostly for tests around expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", config.ErrConfig)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	o := buildOptions(opts)
	return &Issuer{secret: secret, ttl: ttl, now: o.now}, nil
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs an HS256 token carrying the user's identity and admin flag.
func (i *Issuer) Issue(userID string, isAdmin bool) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("tokens: empty user id")
	}
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.ttl)

	claims := Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

type Validator struct {
	secret []byte
	now    func() time.Time
}

func NewValidator(secret []byte, opts ...Option) (*Validator, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", config.ErrConfig)
	}
	o := buildOptions(opts)
	return &Validator{secret: secret, now: o.now}, nil
}

// Validate checks signature, algorithm and expiry and returns the decoded
// claims. Every failure collapses into ErrInvalidToken.
func (v *Validator) Validate(ctx context.Context, raw string) (*Claims, error) {
	l := logging.FromContext(ctx).With("component", "token_validator")

	if raw == "" {
		l.Debug("token_rejected", "reason", "empty token")
		return nil, ErrInvalidToken
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !tkn.Valid {
		l.Info("token_rejected", "reason", rejectReason(err), "error", err)
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		l.Info("token_rejected", "reason", "missing user id")
		return nil, ErrInvalidToken
	}

	return &claims, nil
}

func rejectReason(err error) string {
	switch {
	case err == nil:
		return "invalid"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "unverifiable"
	default:
		return "invalid claims"
	}
}
