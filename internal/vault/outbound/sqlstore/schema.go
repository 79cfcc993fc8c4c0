package sqlstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the storage schema. Tenants are registered explicitly; records
// and heartbeat rows reference hashed names only.
const Schema = `
CREATE TABLE IF NOT EXISTS kv_tenants (
    tenant     TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS kv_records (
    tenant     TEXT   NOT NULL REFERENCES kv_tenants (tenant),
    usr        TEXT   NOT NULL,
    key        TEXT   NOT NULL,
    value      TEXT   NOT NULL,
    updated_at BIGINT NOT NULL,
    PRIMARY KEY (tenant, usr, key)
);

CREATE TABLE IF NOT EXISTS kv_heartbeat (
    host       TEXT   PRIMARY KEY,
    counter    BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);
`

// ApplySchema creates the storage tables when they do not exist yet.
func ApplySchema(ctx context.Context, conn *pgxpool.Pool) error {
	_, err := conn.Exec(ctx, Schema)
	return err
}
