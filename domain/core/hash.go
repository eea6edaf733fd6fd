package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Short returns the first 12 hex characters, enough for log lines.
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// InputHash fingerprints the canonical encoding of an analysis input.
type InputHash Hash

func NewInputHash(data []byte) InputHash { return InputHash(NewHash(data)) }

func (h InputHash) String() string { return Hash(h).String() }
func (h InputHash) Short() string  { return Hash(h).Short() }
