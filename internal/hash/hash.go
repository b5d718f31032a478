package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 10

// MaxPasswordBytes is the longest input bcrypt looks at in full.
const MaxPasswordBytes = 72

var ErrEmptyPassword = errors.New("hash: password is empty")

// Hasher turns plaintext passwords into salted bcrypt digests and checks them.
type Hasher struct {
	cost int
}

// New returns a Hasher with the given cost, falling back to DefaultCost when
// cost is outside the range bcrypt accepts.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Cost() int { return h.cost }

// Hash returns a fresh digest; two calls with the same password never return
// the same string because bcrypt draws a new salt each time.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify rejects passwords longer than MaxPasswordBytes outright: bcrypt
// ignores everything past that point, and Hash never accepts them.
func (h *Hasher) Verify(password, digest string) bool {
	if digest == "" || len(password) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// IsTooLong reports whether err came from a password bcrypt cannot handle.
func IsTooLong(err error) bool {
	return errors.Is(err, bcrypt.ErrPasswordTooLong)
}
