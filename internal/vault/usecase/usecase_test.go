package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
	"github.com/shandysiswandi/kvgate/internal/pkg/hash"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/kdf"
	"github.com/shandysiswandi/kvgate/internal/pkg/pool"
	"github.com/shandysiswandi/kvgate/internal/pkg/sectoken"
	"github.com/shandysiswandi/kvgate/internal/pkg/validator"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/store"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/widecol"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

// newTestVault wires a full vault: real token codec, real gateway, pooled
// in-memory backend.
func newTestVault(t *testing.T) (*Usecase, *sectoken.Codec) {
	t.Helper()

	deriver, err := kdf.New([]byte("test master secret"))
	if err != nil {
		t.Fatalf("new deriver: %v", err)
	}
	signKey, err := deriver.SigningKey()
	if err != nil {
		t.Fatalf("signing key: %v", err)
	}
	encKey, err := deriver.EncryptionKey()
	if err != nil {
		t.Fatalf("encryption key: %v", err)
	}

	clk := fixedClock{t: time.UnixMilli(1735689600000)}
	codec, err := sectoken.New(signKey, encKey, clk)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	backend := widecol.NewMemory()
	p, err := pool.New(pool.Config[widecol.Client]{
		Hosts:          []string{"memory"},
		Max:            4,
		AcquireTimeout: time.Second,
		IdleTimeout:    time.Minute,
		ReapInterval:   time.Minute,
		Dial: func(context.Context, string) (widecol.Client, error) {
			return backend, nil
		},
		Close: func(widecol.Client) error { return nil },
	})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(p.Close)

	gw := store.New(store.Dependency{
		Pool:       p,
		Digest:     hash.NewSHA1Hex(),
		Clock:      clk,
		Instrument: instrument.NewNoop(),
	})

	val, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	uc := NewVault(Dependency{
		Store:      gw,
		Tokens:     codec,
		Validator:  val,
		Instrument: instrument.NewNoop(),
	})

	return uc, codec
}

func codeOf(t *testing.T, err error) goerror.Code {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	return gerr.Code()
}

func TestPutGetRoundTrip(t *testing.T) {
	// Arrange
	uc, codec := newTestVault(t)
	ctx := context.Background()

	if err := uc.Provision(ctx, ProvisionInput{Audience: "example.com"}); err != nil {
		t.Fatalf("provision: %v", err)
	}

	// Tokens carry the normalized tenant, the way StartSession mints them.
	token, err := codec.Mint("alice@example.com", "https://example.com")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Act
	err = uc.PutValue(ctx, PutValueInput{
		Token:  token,
		AppID:  "example.com",
		UserID: "alice@example.com",
		Key:    "preferences",
		Value:  `{"theme":"dark"}`,
	})
	if err != nil {
		t.Fatalf("PutValue() error = %v", err)
	}

	record, err := uc.GetValue(ctx, GetValueInput{
		Token:  token,
		AppID:  "example.com",
		UserID: "alice@example.com",
		Key:    "preferences",
	})

	// Assert
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	if record.Value != `{"theme":"dark"}` {
		t.Fatalf("value = %q, want stored payload", record.Value)
	}
	if record.User != "alice@example.com" || record.Bucket != "https://example.com" {
		t.Fatalf("record metadata = %q/%q, want user and bucket", record.User, record.Bucket)
	}
	if record.Timestamp != 1735689600000 {
		t.Fatalf("timestamp = %d, want clock time in millis", record.Timestamp)
	}
}

func TestAppIDSpellingsMapToOneTenant(t *testing.T) {
	// Arrange
	uc, codec := newTestVault(t)
	ctx := context.Background()

	if err := uc.Provision(ctx, ProvisionInput{Audience: "example.com"}); err != nil {
		t.Fatalf("provision: %v", err)
	}

	token, err := codec.Mint("alice@example.com", "https://example.com")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	err = uc.PutValue(ctx, PutValueInput{
		Token: token, AppID: "https://Example.com:443", UserID: "alice@example.com",
		Key: "k", Value: "v",
	})
	if err != nil {
		t.Fatalf("PutValue() error = %v", err)
	}

	// Act
	record, err := uc.GetValue(ctx, GetValueInput{
		Token: token, AppID: "example.com", UserID: "alice@example.com", Key: "k",
	})

	// Assert
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	if record.Value != "v" {
		t.Fatalf("value = %q, want value written under another spelling", record.Value)
	}
}

func TestGetMissingKeyIsNotFound(t *testing.T) {
	// Arrange
	uc, codec := newTestVault(t)
	ctx := context.Background()

	if err := uc.Provision(ctx, ProvisionInput{Audience: "example.com"}); err != nil {
		t.Fatalf("provision: %v", err)
	}
	token, _ := codec.Mint("alice@example.com", "https://example.com")

	// Act
	_, err := uc.GetValue(ctx, GetValueInput{
		Token: token, AppID: "example.com", UserID: "alice@example.com", Key: "absent",
	})

	// Assert
	if code := codeOf(t, err); code != goerror.CodeNotFound {
		t.Fatalf("code = %v, want CodeNotFound", code)
	}
}

func TestUnprovisionedTenantIsRejected(t *testing.T) {
	// Arrange
	uc, codec := newTestVault(t)
	token, _ := codec.Mint("alice@example.com", "https://example.com")

	// Act
	err := uc.PutValue(context.Background(), PutValueInput{
		Token: token, AppID: "example.com", UserID: "alice@example.com", Key: "k", Value: "v",
	})

	// Assert
	if code := codeOf(t, err); code != goerror.CodeNotProvisioned {
		t.Fatalf("code = %v, want CodeNotProvisioned", code)
	}
}

func TestForgedTokenIsUnauthorized(t *testing.T) {
	// Arrange
	uc, _ := newTestVault(t)

	// Act
	_, err := uc.GetValue(context.Background(), GetValueInput{
		Token: "forged:token", AppID: "example.com", UserID: "alice@example.com", Key: "k",
	})

	// Assert
	if code := codeOf(t, err); code != goerror.CodeUnauthorized {
		t.Fatalf("code = %v, want CodeUnauthorized", code)
	}
}

func TestCrossUserAccessIsForbidden(t *testing.T) {
	// Arrange
	uc, codec := newTestVault(t)
	ctx := context.Background()

	if err := uc.Provision(ctx, ProvisionInput{Audience: "example.com"}); err != nil {
		t.Fatalf("provision: %v", err)
	}
	token, _ := codec.Mint("alice@example.com", "https://example.com")

	// Act: alice's token, bob's data
	_, err := uc.GetValue(ctx, GetValueInput{
		Token: token, AppID: "example.com", UserID: "bob@example.com", Key: "k",
	})

	// Assert
	if code := codeOf(t, err); code != goerror.CodeForbidden {
		t.Fatalf("code = %v, want CodeForbidden", code)
	}
}

func TestCrossTenantAccessIsForbidden(t *testing.T) {
	// Arrange
	uc, codec := newTestVault(t)
	ctx := context.Background()

	if err := uc.Provision(ctx, ProvisionInput{Audience: "other.example.net"}); err != nil {
		t.Fatalf("provision: %v", err)
	}
	token, _ := codec.Mint("alice@example.com", "https://example.com")

	// Act: token for example.com used against another tenant
	err := uc.PutValue(ctx, PutValueInput{
		Token: token, AppID: "other.example.net", UserID: "alice@example.com", Key: "k", Value: "v",
	})

	// Assert
	if code := codeOf(t, err); code != goerror.CodeForbidden {
		t.Fatalf("code = %v, want CodeForbidden", code)
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	// Arrange
	uc, codec := newTestVault(t)
	ctx := context.Background()

	if err := uc.Provision(ctx, ProvisionInput{Audience: "example.com"}); err != nil {
		t.Fatalf("provision: %v", err)
	}
	token, _ := codec.Mint("alice@example.com", "https://example.com")

	in := PutValueInput{
		Token: token, AppID: "example.com", UserID: "alice@example.com", Key: "k", Value: "v",
	}
	if err := uc.PutValue(ctx, in); err != nil {
		t.Fatalf("PutValue() error = %v", err)
	}

	// Act
	err := uc.DelValue(ctx, DelValueInput{
		Token: token, AppID: "example.com", UserID: "alice@example.com", Key: "k",
	})
	if err != nil {
		t.Fatalf("DelValue() error = %v", err)
	}

	_, err = uc.GetValue(ctx, GetValueInput{
		Token: token, AppID: "example.com", UserID: "alice@example.com", Key: "k",
	})

	// Assert
	if code := codeOf(t, err); code != goerror.CodeNotFound {
		t.Fatalf("code = %v, want CodeNotFound after delete", code)
	}
}

func TestProvisionIsIdempotent(t *testing.T) {
	// Arrange
	uc, _ := newTestVault(t)
	ctx := context.Background()

	// Act
	first := uc.Provision(ctx, ProvisionInput{Audience: "example.com"})
	second := uc.Provision(ctx, ProvisionInput{Audience: "https://Example.com:443"})

	// Assert
	if first != nil || second != nil {
		t.Fatalf("Provision() errors = %v, %v, want both nil", first, second)
	}
}

func TestHeartbeat(t *testing.T) {
	// Arrange
	uc, _ := newTestVault(t)
	ctx := context.Background()

	// Heartbeat requires the bootstrap table.
	if ok := uc.Heartbeat(ctx); ok {
		t.Fatalf("Heartbeat() = true before heartbeat table exists")
	}

	gw, okCast := uc.store.(interface{ EnsureHeartbeat(context.Context) error })
	if !okCast {
		t.Fatalf("store does not expose EnsureHeartbeat")
	}
	if err := gw.EnsureHeartbeat(ctx); err != nil {
		t.Fatalf("EnsureHeartbeat() error = %v", err)
	}

	// Act & Assert
	if ok := uc.Heartbeat(ctx); !ok {
		t.Fatalf("Heartbeat() = false after bootstrap")
	}
}
