package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
)

// Sum returns the hex-encoded sha256 of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumReader hashes a stream without buffering it whole.
func SumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Matcher verifies uploaded receipt content against a checksum the client
// declared, so a truncated upload is rejected before it reaches storage.
type Matcher struct {
	expected string
}

func NewMatcher(expected string) *Matcher {
	return &Matcher{expected: expected}
}

func (m *Matcher) Match(data []byte) (bool, error) {
	if m.expected == "" {
		return false, errors.New("expected checksum is not set")
	}
	return Sum(data) == m.expected, nil
}
