package browserid

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
)

func encodeSegment(t *testing.T, v any) string {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal segment: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// fakeJWT builds a JWT-shaped string with the given claims and a dummy
// signature, enough for unverified parsing.
func fakeJWT(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := encodeSegment(t, map[string]any{"alg": "RS256", "typ": "JWT"})
	payload := encodeSegment(t, claims)
	return header + "." + payload + "." + base64.RawURLEncoding.EncodeToString([]byte("sig"))
}

func certFor(t *testing.T, email string) string {
	t.Helper()
	return fakeJWT(t, map[string]any{
		"iss":       "login.example.org",
		"principal": map[string]any{"email": email},
	})
}

func assertionFor(t *testing.T, aud string) string {
	t.Helper()
	return fakeJWT(t, map[string]any{"aud": aud, "exp": 9999999999})
}

func TestOfflineVerifyTildeBundle(t *testing.T) {
	// Arrange
	v := NewOffline(instrument.NewNoop())
	bundle := certFor(t, "bob@example.com") + "~" + assertionFor(t, "example.com")

	// Act
	email, err := v.Verify(context.Background(), bundle, "example.com")

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if email != "bob@example.com" {
		t.Fatalf("email = %q, want %q", email, "bob@example.com")
	}
}

func TestOfflineVerifyJSONBundle(t *testing.T) {
	// Arrange
	v := NewOffline(instrument.NewNoop())
	raw, err := json.Marshal(map[string]any{
		"certificates": []string{certFor(t, "carol@example.com")},
		"assertion":    assertionFor(t, "example.com"),
	})
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	bundle := base64.RawURLEncoding.EncodeToString(raw)

	// Act
	email, err := v.Verify(context.Background(), bundle, "example.com")

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if email != "carol@example.com" {
		t.Fatalf("email = %q, want %q", email, "carol@example.com")
	}
}

func TestOfflineVerifyRejectsAudienceMismatch(t *testing.T) {
	// Arrange
	v := NewOffline(instrument.NewNoop())
	bundle := certFor(t, "bob@example.com") + "~" + assertionFor(t, "evil.example.net")

	// Act
	_, err := v.Verify(context.Background(), bundle, "example.com")

	// Assert
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("Verify() error = %v, want ErrVerificationFailed", err)
	}
}

func TestOfflineVerifyRejectsGarbage(t *testing.T) {
	// Arrange
	v := NewOffline(instrument.NewNoop())

	tests := []string{
		"",
		"not-base64!!",
		"only-one-part~",
		fakeJWT(t, map[string]any{"no": "principal"}) + "~" + assertionFor(t, "example.com"),
	}

	for _, assertion := range tests {
		// Act
		_, err := v.Verify(context.Background(), assertion, "example.com")

		// Assert
		if err == nil {
			t.Fatalf("Verify(%q) accepted a malformed assertion", assertion)
		}
	}
}

func TestRemoteVerifyOkay(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("audience") != "example.com" {
			t.Errorf("audience = %q, want %q", r.PostForm.Get("audience"), "example.com")
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":   "okay",
			"email":    "dave@example.com",
			"audience": "example.com",
		})
	}))
	defer srv.Close()

	v := NewRemote(instrument.NewNoop(), WithVerifyURL(srv.URL))

	// Act
	email, err := v.Verify(context.Background(), "assertion-blob", "example.com")

	// Assert
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if email != "dave@example.com" {
		t.Fatalf("email = %q, want %q", email, "dave@example.com")
	}
}

func TestRemoteVerifyFailure(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "failure",
			"reason": "assertion has expired",
		})
	}))
	defer srv.Close()

	v := NewRemote(instrument.NewNoop(), WithVerifyURL(srv.URL))

	// Act
	_, err := v.Verify(context.Background(), "assertion-blob", "example.com")

	// Assert
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("Verify() error = %v, want ErrVerificationFailed", err)
	}
}

func TestRemoteVerifyUnreachable(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	v := NewRemote(instrument.NewNoop(), WithVerifyURL(srv.URL))

	// Act
	_, err := v.Verify(context.Background(), "assertion-blob", "example.com")

	// Assert
	if err == nil {
		t.Fatalf("Verify() succeeded against a closed server")
	}
}
