package widecol

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

const tableRegistryKey = "wc:tables"

// Every script checks the table registry first so that a missing table and a
// missing row surface as distinct error replies in one round trip.
var (
	scriptCreate = redis.NewScript(`
if redis.call('SADD', KEYS[1], ARGV[1]) == 0 then
  return redis.error_reply('EXISTS ' .. ARGV[1])
end
return 'OK'`)

	scriptPut = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 0 then
  return redis.error_reply('NOTABLE ' .. ARGV[1])
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3], ARGV[2] .. '@ts', ARGV[4])
return 'OK'`)

	scriptGet = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 0 then
  return redis.error_reply('NOTABLE ' .. ARGV[1])
end
local v = redis.call('HGET', KEYS[2], ARGV[2])
if not v then
  return redis.error_reply('NOROW ' .. ARGV[2])
end
local ts = redis.call('HGET', KEYS[2], ARGV[2] .. '@ts')
return {v, ts or '0'}`)

	scriptDelete = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 0 then
  return redis.error_reply('NOTABLE ' .. ARGV[1])
end
local n = redis.call('HDEL', KEYS[2], ARGV[2], ARGV[2] .. '@ts')
if n == 0 then
  return redis.error_reply('NOROW ' .. ARGV[2])
end
return n`)

	scriptIncrement = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 0 then
  return redis.error_reply('NOTABLE ' .. ARGV[1])
end
return redis.call('HINCRBY', KEYS[2], ARGV[2], ARGV[3])`)
)

// Redis implements Client on a dedicated go-redis connection.
type Redis struct {
	conn *redis.Conn
}

// NewRedis wraps a dedicated connection.
func NewRedis(conn *redis.Conn) *Redis {
	return &Redis{conn: conn}
}

func rowKey(table, row string) string {
	return "wc:t:" + table + ":r:" + row
}

// CreateTable registers a table in the registry set.
func (r *Redis) CreateTable(ctx context.Context, table string) error {
	err := scriptCreate.Run(ctx, r.conn, []string{tableRegistryKey}, table).Err()
	return mapRedisError(err)
}

// Put writes a column value and its timestamp in one script call.
func (r *Redis) Put(ctx context.Context, table, row, column, value string, timestamp int64) error {
	keys := []string{tableRegistryKey, rowKey(table, row)}
	err := scriptPut.Run(ctx, r.conn, keys, table, column, value, timestamp).Err()
	return mapRedisError(err)
}

// Get reads a column value and its timestamp in one script call.
func (r *Redis) Get(ctx context.Context, table, row, column string) (*Cell, error) {
	keys := []string{tableRegistryKey, rowKey(table, row)}
	res, err := scriptGet.Run(ctx, r.conn, keys, table, column).Slice()
	if err != nil {
		return nil, mapRedisError(err)
	}
	if len(res) != 2 {
		return nil, &Error{Category: CategoryIO, Message: "unexpected script reply"}
	}

	value, ok := res[0].(string)
	if !ok {
		return nil, &Error{Category: CategoryIO, Message: "unexpected value type in script reply"}
	}

	var ts int64
	if s, ok := res[1].(string); ok {
		ts, _ = strconv.ParseInt(s, 10, 64)
	}

	return &Cell{Value: value, Timestamp: ts}, nil
}

// Delete removes a column in one script call.
func (r *Redis) Delete(ctx context.Context, table, row, column string) error {
	keys := []string{tableRegistryKey, rowKey(table, row)}
	err := scriptDelete.Run(ctx, r.conn, keys, table, column).Err()
	return mapRedisError(err)
}

// Increment atomically adds amount to a numeric column.
func (r *Redis) Increment(ctx context.Context, table, row, column string, amount int64) (int64, error) {
	keys := []string{tableRegistryKey, rowKey(table, row)}
	n, err := scriptIncrement.Run(ctx, r.conn, keys, table, column, amount).Int64()
	if err != nil {
		return 0, mapRedisError(err)
	}
	return n, nil
}

// Close closes the underlying connection.
func (r *Redis) Close() error {
	return r.conn.Close()
}

func mapRedisError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return &Error{Category: CategoryMissing, Message: "no value"}
	}

	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "NOTABLE "):
		return &Error{Category: CategoryIO, Resource: strings.TrimPrefix(msg, "NOTABLE "), Message: "unknown table"}
	case strings.HasPrefix(msg, "NOROW "):
		return &Error{Category: CategoryMissing, Resource: strings.TrimPrefix(msg, "NOROW "), Message: "no such cell"}
	case strings.HasPrefix(msg, "EXISTS "):
		return &Error{Category: CategoryAlreadyExists, Resource: strings.TrimPrefix(msg, "EXISTS "), Message: "table exists"}
	case strings.HasPrefix(msg, "ERR "), strings.HasPrefix(msg, "WRONGTYPE"):
		return &Error{Category: CategoryIllegalArgument, Message: msg}
	default:
		return &Error{Category: CategoryIO, Message: msg}
	}
}
