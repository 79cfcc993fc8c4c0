package kdf

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Purpose labels for the two keys every deployment needs. Separate keys per
// purpose keep the service from accidentally becoming a signature oracle for
// its own ciphertexts.
const (
	PurposeSigning    = "SIGNING"
	PurposeEncryption = "ENCRYPTION"
)

// DefaultKeySize is the derived key length in bytes when no explicit size is
// requested. It matches AES-128 key material.
const DefaultKeySize = 16

// ErrMasterSecretEmpty indicates the deriver was built without a master secret.
var ErrMasterSecretEmpty = errors.New("kdf: master secret is empty")

// Option customizes a Deriver.
type Option func(*Deriver)

// WithHash overrides the underlying hash function (default SHA-256).
func WithHash(h func() hash.Hash) Option {
	return func(d *Deriver) {
		d.hash = h
	}
}

// WithSalt overrides the extraction salt (default "kvgate.authn").
func WithSalt(salt string) Option {
	return func(d *Deriver) {
		d.salt = []byte(salt)
	}
}

// Deriver produces purpose-scoped keys from a single master secret using the
// RFC 5869 extract-then-expand construction.
//
// The master secret is held for the process lifetime and must never be logged
// or persisted; derived keys are deterministic for a fixed secret, so they are
// re-derived on every start instead of being stored anywhere.
type Deriver struct {
	secret []byte
	salt   []byte
	hash   func() hash.Hash
}

// New builds a Deriver over the given master secret.
func New(masterSecret []byte, opts ...Option) (*Deriver, error) {
	if len(masterSecret) == 0 {
		return nil, ErrMasterSecretEmpty
	}

	d := &Deriver{
		secret: append([]byte(nil), masterSecret...),
		salt:   []byte("kvgate.authn"),
		hash:   sha256.New,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Derive returns size bytes of key material bound to the purpose label.
//
// The expand stage caps output at 255 hash blocks; asking for more is a
// configuration error and should be fatal at startup.
func (d *Deriver) Derive(purpose string, size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("kdf: invalid key size %d", size)
	}
	if max := 255 * d.hash().Size(); size > max {
		return nil, fmt.Errorf("kdf: cannot derive %d bytes, maximum is %d", size, max)
	}

	key := make([]byte, size)
	r := hkdf.New(d.hash, d.secret, d.salt, []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("kdf: expand failed: %w", err)
	}

	return key, nil
}

// SigningKey derives the default-size signing key.
func (d *Deriver) SigningKey() ([]byte, error) {
	return d.Derive(PurposeSigning, DefaultKeySize)
}

// EncryptionKey derives the default-size encryption key.
func (d *Deriver) EncryptionKey() ([]byte, error) {
	return d.Derive(PurposeEncryption, DefaultKeySize)
}
