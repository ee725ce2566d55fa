// Package password hashes and verifies login secrets with bcrypt.
package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password mismatch")

// ErrTooLong is returned for passwords beyond bcrypt's 72-byte input limit.
var ErrTooLong = bcrypt.ErrPasswordTooLong

// MaxLength is the longest password bcrypt reads in full.
const MaxLength = 72

// Hasher produces salted bcrypt hashes at a fixed cost.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher returns a Hasher; out-of-range costs fall back to bcrypt.DefaultCost.
// The dummy hash used by CompareDummy is computed here, outside any request.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("taskboard-dummy-password"), cost)
	if err != nil {
		panic("password: dummy hash: " + err.Error())
	}
	return &Hasher{cost: cost, dummy: dummy}
}

// Hash returns the bcrypt hash of plain.
func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare checks plain against a stored hash. bcrypt ignores input past
// MaxLength bytes, so longer passwords never match; they still pay for one
// comparison on the truncated prefix.
func (h *Hasher) Compare(hash, plain string) error {
	if len(plain) > MaxLength {
		_ = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain[:MaxLength]))
		return ErrMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}
	return nil
}

// CompareDummy burns the same work as Compare against a throwaway hash. Callers
// use it when the account does not exist so response time does not reveal that.
func (h *Hasher) CompareDummy(plain string) {
	if len(plain) > MaxLength {
		plain = plain[:MaxLength]
	}
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
