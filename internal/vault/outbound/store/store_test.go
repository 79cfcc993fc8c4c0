package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
	"github.com/shandysiswandi/kvgate/internal/pkg/hash"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/pool"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/widecol"
)

type testClock struct{}

func (testClock) Now() time.Time { return time.UnixMilli(42) }

// brokenClient fails every call with a transport-style IO error.
type brokenClient struct {
	widecol.Client
	closed bool
}

func (b *brokenClient) Put(context.Context, string, string, string, string, int64) error {
	return &widecol.Error{Category: widecol.CategoryIO, Message: "connection reset"}
}

func (b *brokenClient) Close() error {
	b.closed = true
	return nil
}

func newStorePool(t *testing.T, dial func(context.Context, string) (widecol.Client, error)) *pool.Pool[widecol.Client] {
	t.Helper()

	p, err := pool.New(pool.Config[widecol.Client]{
		Hosts:          []string{"backend"},
		Max:            2,
		AcquireTimeout: time.Second,
		IdleTimeout:    time.Minute,
		ReapInterval:   time.Minute,
		Dial:           dial,
		Close:          func(c widecol.Client) error { return c.Close() },
	})
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(p.Close)

	return p
}

func TestMorph(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want goerror.Code
	}{
		{"missing cell", &widecol.Error{Category: widecol.CategoryMissing}, goerror.CodeNotFound},
		{"tenant table absent", &widecol.Error{Category: widecol.CategoryIO, Resource: "tenant-tbl"}, goerror.CodeNotProvisioned},
		{"other table absent", &widecol.Error{Category: widecol.CategoryIO, Resource: "other-tbl"}, goerror.CodeUnavailable},
		{"transport", &widecol.Error{Category: widecol.CategoryIO}, goerror.CodeUnavailable},
		{"bad argument", &widecol.Error{Category: widecol.CategoryIllegalArgument, Message: "nope"}, goerror.CodeInvalidFormat},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			morphed := morph(tc.err, "tenant-tbl")

			var gerr *goerror.Error
			if !errors.As(morphed, &gerr) {
				t.Fatalf("morph() = %v, want *goerror.Error", morphed)
			}
			if gerr.Code() != tc.want {
				t.Fatalf("code = %v, want %v", gerr.Code(), tc.want)
			}
		})
	}

	if morph(nil, "tenant-tbl") != nil {
		t.Fatalf("morph(nil) should stay nil")
	}
}

func TestTransportFailureDiscardsConnection(t *testing.T) {
	// Arrange
	var dials int
	broken := &brokenClient{}
	p := newStorePool(t, func(context.Context, string) (widecol.Client, error) {
		dials++
		return broken, nil
	})

	s := New(Dependency{
		Pool:       p,
		Digest:     hash.NewSHA1Hex(),
		Clock:      testClock{},
		Instrument: instrument.NewNoop(),
	})

	// Act
	err := s.Put(context.Background(), "example.com", "alice", "k", "v")

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnavailable {
		t.Fatalf("Put() error = %v, want CodeUnavailable", err)
	}
	if !broken.closed {
		t.Fatalf("connection with transport failure was not discarded")
	}

	live, idle := p.Stats()
	if live != 0 || idle != 0 {
		t.Fatalf("pool live=%d idle=%d after discard, want 0/0", live, idle)
	}
	_ = dials
}

func TestAddressesAreHashedAndStable(t *testing.T) {
	// Arrange
	backend := widecol.NewMemory()
	p := newStorePool(t, func(context.Context, string) (widecol.Client, error) {
		return backend, nil
	})

	s := New(Dependency{
		Pool:       p,
		Digest:     hash.NewSHA1Hex(),
		Clock:      testClock{},
		Instrument: instrument.NewNoop(),
	})
	ctx := context.Background()

	if err := s.Provision(ctx, "example.com"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if err := s.Put(ctx, "example.com", "alice@example.com", "k", "v"); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Act: read through the raw backend at the hashed address.
	digest := hash.NewSHA1Hex()
	cell, err := backend.Get(ctx,
		digest.Digest("example.com"),
		digest.Digest("alice@example.com"),
		"key:k",
	)

	// Assert
	if err != nil {
		t.Fatalf("backend get at hashed address: %v", err)
	}
	if cell.Value != "v" {
		t.Fatalf("value = %q, want %q", cell.Value, "v")
	}
}

func TestProvisionTwiceSucceeds(t *testing.T) {
	// Arrange
	backend := widecol.NewMemory()
	p := newStorePool(t, func(context.Context, string) (widecol.Client, error) {
		return backend, nil
	})
	s := New(Dependency{
		Pool:       p,
		Digest:     hash.NewSHA1Hex(),
		Clock:      testClock{},
		Instrument: instrument.NewNoop(),
	})

	// Act
	first := s.Provision(context.Background(), "example.com")
	second := s.Provision(context.Background(), "example.com")

	// Assert
	if first != nil || second != nil {
		t.Fatalf("Provision() errors = %v, %v, want both nil", first, second)
	}
}
