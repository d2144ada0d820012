package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// sweepLockKey ключ advisory lock лидера планировщика.
const sweepLockKey int64 = 727401

// Leader решает, какой экземпляр выполняет очистку.
type Leader interface {
	// TryLead возвращает true, если экземпляр лидер.
	TryLead(ctx context.Context) (bool, error)
	// Release отпускает лидерство.
	Release(ctx context.Context)
}

// Solo всегда лидер. Для sqlite и memory, где экземпляр один.
type Solo struct{}

func (Solo) TryLead(context.Context) (bool, error) { return true, nil }
func (Solo) Release(context.Context)               {}

// AdvisoryLock лидерство через pg_try_advisory_lock.
//
// Блокировка принадлежит сессии PostgreSQL, поэтому соединение
// берётся из пула и удерживается, пока экземпляр остаётся лидером.
type AdvisoryLock struct {
	pool *pgxpool.Pool
	key  int64

	mu   sync.Mutex
	conn *pgxpool.Conn
}

// NewAdvisoryLock создаёт AdvisoryLock с ключом по умолчанию.
func NewAdvisoryLock(pool *pgxpool.Pool) *AdvisoryLock {
	return &AdvisoryLock{pool: pool, key: sweepLockKey}
}

func (l *AdvisoryLock) TryLead(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn != nil {
		if err := l.conn.Ping(ctx); err == nil {
			return true, nil
		}
		// Соединение потеряно вместе с блокировкой.
		l.conn.Release()
		l.conn = nil
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}

	var ok bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", l.key).Scan(&ok); err != nil {
		conn.Release()
		return false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !ok {
		conn.Release()
		return false, nil
	}

	l.conn = conn
	return true, nil
}

func (l *AdvisoryLock) Release(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return
	}
	_, _ = l.conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", l.key)
	l.conn.Release()
	l.conn = nil
}
