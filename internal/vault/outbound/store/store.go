// Package store is the wide-column storage gateway. It maps tenants, users
// and keys onto hashed table and row names, borrows pooled backend
// connections, and morphs backend failures into application errors.
package store

import (
	"context"
	"errors"

	"github.com/shandysiswandi/kvgate/internal/pkg/clock"
	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
	"github.com/shandysiswandi/kvgate/internal/pkg/hash"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/pkg/pool"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/widecol"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	heartbeatTable  = "__heartbeat__"
	heartbeatColumn = "incr:a"
	columnPrefix    = "key:"
)

// Store is a storage gateway backed by a pool of wide-column connections.
type Store struct {
	pool   *pool.Pool[widecol.Client]
	digest hash.Digester
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

// Dependency carries what a Store needs.
type Dependency struct {
	Pool       *pool.Pool[widecol.Client]
	Digest     hash.Digester
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

// New builds a Store.
func New(dep Dependency) *Store {
	return &Store{
		pool:   dep.Pool,
		digest: dep.Digest,
		clock:  dep.Clock,
		ins:    dep.Instrument,
	}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.outbound.store").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	var gerr *goerror.Error
	if err != nil && (!errors.As(err, &gerr) || gerr.Code() == goerror.CodeUnavailable) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// withConn borrows a pooled connection for one backend call. Connections
// that hit a transport failure are discarded instead of returned.
func (s *Store) withConn(ctx context.Context, fn func(c widecol.Client) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return goerror.NewUnavailable(err)
	}

	err = fn(conn.Value)

	var werr *widecol.Error
	if errors.As(err, &werr) && werr.Category == widecol.CategoryIO && werr.Resource == "" {
		s.pool.Discard(conn)
	} else {
		s.pool.Release(conn)
	}

	return err
}

// morph translates a backend error for an operation on the given tenant
// table. An IO error naming the tenant table means the tenant was never
// provisioned; any other IO error means the backend is unreachable.
func morph(err error, tenantTable string) error {
	if err == nil {
		return nil
	}

	var werr *widecol.Error
	if !errors.As(err, &werr) {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return err
		}
		return goerror.NewUnavailable(err)
	}

	switch werr.Category {
	case widecol.CategoryMissing:
		return goerror.NewBusiness("Unknown item", goerror.CodeNotFound)
	case widecol.CategoryIO:
		if werr.Resource == tenantTable && tenantTable != "" {
			return goerror.NewBusiness("Unknown database", goerror.CodeNotProvisioned)
		}
		return goerror.NewUnavailable(werr)
	case widecol.CategoryIllegalArgument:
		return goerror.NewInvalidFormat(werr.Message)
	default:
		return goerror.NewServer(werr)
	}
}

func (s *Store) address(tenant, user string) (table, row string) {
	return s.digest.Digest(tenant), s.digest.Digest(user)
}
