package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("store not found")

// Repo persists the aggregate as one JSONB document per store. There is no
// field-level patching: every save replaces the whole document, so the last
// writer wins.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, s *Store) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO stores (id, doc) VALUES ($1, $2)
	`, s.ID, s)
	return err
}

// Update is a whole-aggregate upsert, as setDoc in the original.
func (r *Repo) Update(ctx context.Context, s *Store) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO stores (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, s.ID, s)
	return err
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT doc FROM stores WHERE id = $1`, id)
	var s Store
	if err := row.Scan(&s); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	Upgrade(&s)
	return &s, nil
}

func (r *Repo) List(ctx context.Context) ([]Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT doc FROM stores ORDER BY doc->>'name'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		Upgrade(&s)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the store and, through the schema's ON DELETE CASCADE, every
// opname session owned by it, in one transaction.
func (r *Repo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// Subscribe pushes the full store collection on every change, starting with
// an initial snapshot. The returned func stops the listener.
func (r *Repo) Subscribe(ctx context.Context, onChange func([]Store)) (func(), error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, `LISTEN stores_changed`); err != nil {
		conn.Release()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer conn.Release()
		if stores, err := r.List(subCtx); err == nil {
			onChange(stores)
		}
		for {
			if _, err := conn.Conn().WaitForNotification(subCtx); err != nil {
				return
			}
			stores, err := r.List(subCtx)
			if err != nil {
				continue
			}
			onChange(stores)
		}
	}()
	return cancel, nil
}
