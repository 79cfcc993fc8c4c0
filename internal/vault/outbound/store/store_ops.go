package store

import (
	"context"
	"errors"
	"os"

	"github.com/shandysiswandi/kvgate/internal/vault/entity"
	"github.com/shandysiswandi/kvgate/internal/vault/outbound/widecol"
)

// Put stores a value under the tenant's table.
func (s *Store) Put(ctx context.Context, tenant, user, key, value string) (err error) {
	ctx, span := s.startSpan(ctx, "Put")
	defer func() { s.endSpan(span, err) }()

	table, row := s.address(tenant, user)
	ts := s.clock.Now().UnixMilli()

	err = s.withConn(ctx, func(c widecol.Client) error {
		return c.Put(ctx, table, row, columnPrefix+key, value, ts)
	})
	err = morph(err, table)
	return err
}

// Get reads a value from the tenant's table.
func (s *Store) Get(ctx context.Context, tenant, user, key string) (_ *entity.Record, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	table, row := s.address(tenant, user)

	var cell *widecol.Cell
	err = s.withConn(ctx, func(c widecol.Client) error {
		var cerr error
		cell, cerr = c.Get(ctx, table, row, columnPrefix+key)
		return cerr
	})
	if err = morph(err, table); err != nil {
		return nil, err
	}

	return &entity.Record{
		Key:       key,
		Value:     cell.Value,
		Timestamp: cell.Timestamp,
		User:      user,
		Bucket:    tenant,
	}, nil
}

// Delete removes a value from the tenant's table.
func (s *Store) Delete(ctx context.Context, tenant, user, key string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	table, row := s.address(tenant, user)

	err = s.withConn(ctx, func(c widecol.Client) error {
		return c.Delete(ctx, table, row, columnPrefix+key)
	})
	err = morph(err, table)
	return err
}

// Provision creates the tenant's table. Provisioning an already provisioned
// tenant is a no-op.
func (s *Store) Provision(ctx context.Context, tenant string) (err error) {
	ctx, span := s.startSpan(ctx, "Provision")
	defer func() { s.endSpan(span, err) }()

	table := s.digest.Digest(tenant)

	err = s.withConn(ctx, func(c widecol.Client) error {
		return c.CreateTable(ctx, table)
	})

	var werr *widecol.Error
	if errors.As(err, &werr) && werr.Category == widecol.CategoryAlreadyExists {
		return nil
	}
	err = morph(err, "")
	return err
}

// Ping bumps this host's heartbeat counter, proving a full round trip
// through the pool and the backend.
func (s *Store) Ping(ctx context.Context) (err error) {
	ctx, span := s.startSpan(ctx, "Ping")
	defer func() { s.endSpan(span, err) }()

	row, _ := os.Hostname()
	if row == "" {
		row = "localhost"
	}

	err = s.withConn(ctx, func(c widecol.Client) error {
		_, ierr := c.Increment(ctx, heartbeatTable, row, heartbeatColumn, 1)
		return ierr
	})
	err = morph(err, "")
	return err
}

// EnsureHeartbeat creates the heartbeat table if it does not exist yet. The
// application runs this once in the background at startup.
func (s *Store) EnsureHeartbeat(ctx context.Context) error {
	err := s.withConn(ctx, func(c widecol.Client) error {
		return c.CreateTable(ctx, heartbeatTable)
	})

	var werr *widecol.Error
	if errors.As(err, &werr) && werr.Category == widecol.CategoryAlreadyExists {
		return nil
	}
	return morph(err, "")
}
