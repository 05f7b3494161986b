package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
)

// SessionTokenBytes is the entropy of a session token (192 bits)
const SessionTokenBytes = 24

// randReader is swapped in tests
var randReader io.Reader = rand.Reader

// NewToken returns n random bytes from crypto/rand, hex encoded
func NewToken(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("token length must be positive")
	}

	b := make([]byte, n)
	if _, err := io.ReadFull(randReader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RandomHex returns n random hex characters
func RandomHex(n int) (string, error) {
	token, err := NewToken((n + 1) / 2)
	if err != nil {
		return "", err
	}
	return token[:n], nil
}

// EqualStrings reports whether a and b are identical, in constant time
func EqualStrings(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
