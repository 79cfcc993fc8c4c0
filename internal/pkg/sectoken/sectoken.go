package sectoken

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Token wire format:
//
//	base64(iv ++ AES-CBC(claim)) + ":" + base64(HMAC-SHA256(ciphertext segment))
//
// where claim is "unixMillis:percentEncode(user):percentEncode(tenant)".
// The token is self-contained; verifying it requires no server-side state.

// ErrInvalidToken is the single failure returned by Verify. Every structural,
// signature, or decryption problem collapses into it so a caller (or an
// attacker) cannot tell which stage rejected the token.
var ErrInvalidToken = errors.New("sectoken: invalid token")

// ErrKeyMissing indicates the codec was built without both keys.
var ErrKeyMissing = errors.New("sectoken: signing and encryption keys are required")

// Claim is the decoded content of a session token.
//
// IssuedAt is carried in the token but deliberately not checked against any
// expiry window; tokens do not currently expire.
type Claim struct {
	// IssuedAt is the mint time embedded in the token.
	IssuedAt time.Time
	// User is the verified email the token was minted for.
	User string
	// Tenant is the normalized audience the token is scoped to.
	Tenant string
}

type clocker interface {
	Now() time.Time
}

// Codec mints and verifies opaque session tokens.
type Codec struct {
	signKey []byte
	encKey  []byte
	clock   clocker
}

// New builds a Codec from purpose-derived keys. The encryption key length
// must be a valid AES key size (16, 24 or 32 bytes).
func New(signingKey, encryptionKey []byte, clock clocker) (*Codec, error) {
	if len(signingKey) == 0 || len(encryptionKey) == 0 {
		return nil, ErrKeyMissing
	}
	if _, err := aes.NewCipher(encryptionKey); err != nil {
		return nil, fmt.Errorf("sectoken: bad encryption key: %w", err)
	}

	return &Codec{
		signKey: append([]byte(nil), signingKey...),
		encKey:  append([]byte(nil), encryptionKey...),
		clock:   clock,
	}, nil
}

// Mint encrypts and signs a (now, user, tenant) claim into an opaque token.
// The result is plain std-base64 segments joined by a single colon, safe to
// carry in an HTTP header value.
func (c *Codec) Mint(user, tenant string) (string, error) {
	claim := strconv.FormatInt(c.clock.Now().UnixMilli(), 10) +
		":" + url.QueryEscape(user) +
		":" + url.QueryEscape(tenant)

	block, err := aes.NewCipher(c.encKey)
	if err != nil {
		return "", fmt.Errorf("sectoken: cipher init: %w", err)
	}

	plain := pad([]byte(claim), block.BlockSize())
	buf := make([]byte, block.BlockSize()+len(plain))
	iv := buf[:block.BlockSize()]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("sectoken: iv generation: %w", err)
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(buf[block.BlockSize():], plain)

	seg := base64.StdEncoding.EncodeToString(buf)
	sig := base64.StdEncoding.EncodeToString(c.sign(seg))

	return seg + ":" + sig, nil
}

// Verify checks the token signature in constant time and, only on a match,
// decrypts and decodes the claim. Any failure returns ErrInvalidToken.
func (c *Codec) Verify(token string) (Claim, error) {
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return Claim{}, ErrInvalidToken
	}
	seg, sig64 := parts[0], parts[1]

	sig, err := base64.StdEncoding.DecodeString(sig64)
	if err != nil {
		return Claim{}, ErrInvalidToken
	}

	// Length check first, then full-width comparison; no early exit on the
	// first differing byte.
	want := c.sign(seg)
	if len(sig) != len(want) || subtle.ConstantTimeCompare(sig, want) != 1 {
		return Claim{}, ErrInvalidToken
	}

	data, err := base64.StdEncoding.DecodeString(seg)
	if err != nil {
		return Claim{}, ErrInvalidToken
	}

	block, err := aes.NewCipher(c.encKey)
	if err != nil {
		return Claim{}, ErrInvalidToken
	}
	bs := block.BlockSize()
	if len(data) < 2*bs || len(data)%bs != 0 {
		return Claim{}, ErrInvalidToken
	}

	plain := make([]byte, len(data)-bs)
	cipher.NewCBCDecrypter(block, data[:bs]).CryptBlocks(plain, data[bs:])

	plain, ok := unpad(plain, bs)
	if !ok {
		return Claim{}, ErrInvalidToken
	}

	fields := strings.Split(string(plain), ":")
	if len(fields) != 3 {
		return Claim{}, ErrInvalidToken
	}

	millis, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Claim{}, ErrInvalidToken
	}
	user, err := url.QueryUnescape(fields[1])
	if err != nil {
		return Claim{}, ErrInvalidToken
	}
	tenant, err := url.QueryUnescape(fields[2])
	if err != nil {
		return Claim{}, ErrInvalidToken
	}

	return Claim{
		IssuedAt: time.UnixMilli(millis),
		User:     user,
		Tenant:   tenant,
	}, nil
}

func (c *Codec) sign(seg string) []byte {
	mac := hmac.New(sha256.New, c.signKey)
	mac.Write([]byte(seg))
	return mac.Sum(nil)
}

// pad applies PKCS#7 padding.
func pad(b []byte, bs int) []byte {
	n := bs - len(b)%bs
	out := make([]byte, len(b)+n)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

// unpad strips PKCS#7 padding, reporting false on any inconsistency.
func unpad(b []byte, bs int) ([]byte, bool) {
	if len(b) == 0 || len(b)%bs != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > bs || n > len(b) {
		return nil, false
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
