package opname

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drajad/manajemen-toko/internal/domain/store"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Complete persists the session and the reconciled store in one transaction,
// so a concurrent reader can never observe a half-applied reconciliation.
func (r *Repo) Complete(ctx context.Context, sess *Session, applied *store.Store) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO opname_sessions (id, store_id, date, doc)
		VALUES ($1, $2, $3, $4)
	`, sess.ID, sess.StoreID, sess.Date, sess); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE stores SET doc = $2, updated_at = now() WHERE id = $1
	`, applied.ID, applied)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("apply opname %s: %w", sess.ID, store.ErrNotFound)
	}
	return tx.Commit(ctx)
}

// ListByStore returns a store's sessions newest first.
func (r *Repo) ListByStore(ctx context.Context, storeID string) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT doc FROM opname_sessions WHERE store_id = $1 ORDER BY date DESC
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM opname_sessions ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Subscribe pushes the full history on every change, newest first.
func (r *Repo) Subscribe(ctx context.Context, onChange func([]Session)) (func(), error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, `LISTEN history_changed`); err != nil {
		conn.Release()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer conn.Release()
		if sessions, err := r.List(subCtx); err == nil {
			onChange(sessions)
		}
		for {
			if _, err := conn.Conn().WaitForNotification(subCtx); err != nil {
				return
			}
			sessions, err := r.List(subCtx)
			if err != nil {
				continue
			}
			onChange(sessions)
		}
	}()
	return cancel, nil
}
