package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// SessionIDBytes is the entropy of a session identifier.
const SessionIDBytes = 32

var ErrShortRead = errors.New("random source returned too few bytes")

// NewSessionID returns an unguessable, URL-safe session identifier.
func NewSessionID() (string, error) {
	buf := make([]byte, SessionIDBytes)
	n, err := rand.Read(buf)
	if err != nil {
		return "", err
	}
	if n != len(buf) {
		return "", ErrShortRead
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
