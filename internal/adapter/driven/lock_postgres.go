package driven

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLocker implements the ScheduleLocker port with session level
// advisory locks, so several service instances sharing one database still
// serialize their check-then-write sequences.
//
// Each holder pins a connection until it unlocks. The locker therefore owns
// its own pool: holders query through the repositories' pool and must never
// wait on a connection that another holder or waiter has pinned.
type PostgresLocker struct {
	pool *pgxpool.Pool
}

// NewPostgresLocker opens a pool dedicated to advisory locks on the database
// at dsn. Close releases it.
func NewPostgresLocker(ctx context.Context, dsn string) (*PostgresLocker, error) {
	if dsn == "" {
		return nil, errors.New("dsn cannot be empty")
	}
	pool, err := NewPostgresPool(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("lock pool: %w", err)
	}
	return &PostgresLocker{pool: pool}, nil
}

// Close closes the lock pool. Locks still held are released by the server
// when their sessions end.
func (l *PostgresLocker) Close() {
	l.pool.Close()
}

// Lock pins one pooled connection and takes an advisory lock per key on it.
// The connection goes back to the pool when the returned function runs.
func (l *PostgresLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock connection: %w", err)
	}

	ordered := sortedKeys(keys)
	held := make([]string, 0, len(ordered))

	release := func() {
		broken := false
		for i := len(held) - 1; i >= 0; i-- {
			if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, held[i]); err != nil {
				broken = true
			}
		}
		if broken {
			// A session that may still hold locks must not be reused.
			_ = conn.Conn().Close(context.Background())
		}
		conn.Release()
	}

	for _, key := range ordered {
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, key); err != nil {
			release()
			return nil, fmt.Errorf("advisory lock %s: %w", key, err)
		}
		held = append(held, key)
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}
