package hash

import (
	"crypto/sha1"
	"encoding/hex"
)

// Digester produces a stable hex-encoded digest of an identifier.
type Digester interface {
	// Digest returns the hex digest of value.
	Digest(value string) string
}

// SHA1Hex implements Digester with a 160-bit SHA-1 digest.
//
// SHA-1 is fine here: the digest is an addressing key, not an integrity or
// authentication primitive, and collision resistance at 160 bits is more than
// the keyspace needs.
type SHA1Hex struct{}

// NewSHA1Hex creates a new SHA-1 addressing digester.
func NewSHA1Hex() *SHA1Hex {
	return &SHA1Hex{}
}

// Digest returns the lowercase hex SHA-1 digest of value.
func (*SHA1Hex) Digest(value string) string {
	sum := sha1.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}
