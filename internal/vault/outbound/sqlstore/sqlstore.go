// Package sqlstore is a SQL implementation of the storage gateway. It keeps
// the same hashed addressing and error contract as the wide-column gateway
// but persists records in two relational tables.
package sqlstore

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/kvgate/internal/pkg/clock"
	"github.com/shandysiswandi/kvgate/internal/pkg/goerror"
	"github.com/shandysiswandi/kvgate/internal/pkg/hash"
	"github.com/shandysiswandi/kvgate/internal/pkg/instrument"
	"github.com/shandysiswandi/kvgate/internal/vault/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SQLStore is a storage gateway backed by pgx.
type SQLStore struct {
	conn   *pgxpool.Pool
	digest hash.Digester
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

// Dependency carries what a SQLStore needs.
type Dependency struct {
	Conn       *pgxpool.Pool
	Digest     hash.Digester
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

// New builds a SQLStore.
func New(dep Dependency) *SQLStore {
	return &SQLStore{
		conn:   dep.Conn,
		digest: dep.Digest,
		clock:  dep.Clock,
		ins:    dep.Instrument,
	}
}

func (s *SQLStore) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("vault.outbound.sqlstore").Start(ctx, name)
}

func (s *SQLStore) endSpan(span trace.Span, err error) {
	var gerr *goerror.Error
	if err != nil && (!errors.As(err, &gerr) || gerr.Code() == goerror.CodeUnavailable) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *SQLStore) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.NewBusiness("Unknown item", goerror.CodeNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return goerror.NewServer(err)
	}

	return goerror.NewUnavailable(err)
}

// Put upserts a record under the tenant. Zero rows touched means the tenant
// was never provisioned.
func (s *SQLStore) Put(ctx context.Context, tenant, user, key, value string) (err error) {
	ctx, span := s.startSpan(ctx, "Put")
	defer func() { s.endSpan(span, err) }()

	const q = `
INSERT INTO kv_records (tenant, usr, key, value, updated_at)
SELECT t.tenant, $2, $3, $4, $5 FROM kv_tenants t WHERE t.tenant = $1
ON CONFLICT (tenant, usr, key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	table, row := s.digest.Digest(tenant), s.digest.Digest(user)
	tag, err := s.conn.Exec(ctx, q, table, row, key, value, s.clock.Now().UnixMilli())
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.NewBusiness("Unknown database", goerror.CodeNotProvisioned)
	}
	return nil
}

// Get reads a record under the tenant.
func (s *SQLStore) Get(ctx context.Context, tenant, user, key string) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	const q = `
SELECT r.value, r.updated_at
FROM kv_records r WHERE r.tenant = $1 AND r.usr = $2 AND r.key = $3`

	table, row := s.digest.Digest(tenant), s.digest.Digest(user)

	var value string
	var updatedAt int64
	err = s.conn.QueryRow(ctx, q, table, row, key).Scan(&value, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.missingOrNotProvisioned(ctx, table)
	}
	if err != nil {
		return nil, s.mapError(err)
	}

	return &entity.Record{
		Key:       key,
		Value:     value,
		Timestamp: updatedAt,
		User:      user,
		Bucket:    tenant,
	}, nil
}

// Delete removes a record under the tenant.
func (s *SQLStore) Delete(ctx context.Context, tenant, user, key string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	const q = `DELETE FROM kv_records WHERE tenant = $1 AND usr = $2 AND key = $3`

	table, row := s.digest.Digest(tenant), s.digest.Digest(user)
	tag, err := s.conn.Exec(ctx, q, table, row, key)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOrNotProvisioned(ctx, table)
	}
	return nil
}

// Provision registers the tenant. Provisioning twice is a no-op.
func (s *SQLStore) Provision(ctx context.Context, tenant string) (err error) {
	ctx, span := s.startSpan(ctx, "Provision")
	defer func() { s.endSpan(span, err) }()

	const q = `INSERT INTO kv_tenants (tenant) VALUES ($1) ON CONFLICT (tenant) DO NOTHING`

	_, err = s.conn.Exec(ctx, q, s.digest.Digest(tenant))
	return s.mapError(err)
}

// Ping bumps this host's heartbeat counter.
func (s *SQLStore) Ping(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Ping")
	defer func() { s.endSpan(span, err) }()

	const q = `
INSERT INTO kv_heartbeat (host, counter, updated_at) VALUES ($1, 1, $2)
ON CONFLICT (host)
DO UPDATE SET counter = kv_heartbeat.counter + 1, updated_at = EXCLUDED.updated_at`

	host, _ := os.Hostname()
	if host == "" {
		host = "localhost"
	}

	_, err = s.conn.Exec(ctx, q, host, s.clock.Now().UnixMilli())
	return s.mapError(err)
}

// EnsureHeartbeat is a no-op for the SQL gateway; the heartbeat table is
// part of the schema migration.
func (s *SQLStore) EnsureHeartbeat(context.Context) error {
	return nil
}

// missingOrNotProvisioned distinguishes an absent record from an absent
// tenant with one extra lookup on the provisioning table.
func (s *SQLStore) missingOrNotProvisioned(ctx context.Context, table string) error {
	const q = `SELECT EXISTS (SELECT 1 FROM kv_tenants t WHERE t.tenant = $1)`

	var provisioned bool
	if err := s.conn.QueryRow(ctx, q, table).Scan(&provisioned); err != nil {
		return s.mapError(err)
	}
	if !provisioned {
		return goerror.NewBusiness("Unknown database", goerror.CodeNotProvisioned)
	}
	return goerror.NewBusiness("Unknown item", goerror.CodeNotFound)
}
