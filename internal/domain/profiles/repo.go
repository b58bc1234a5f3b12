package profiles

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) GetByUID(ctx context.Context, uid string) (*Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT uid, email, role, created_at, trial_ends_at
		FROM user_profiles WHERE uid = $1
	`, uid)
	var p Profile
	if err := row.Scan(&p.UID, &p.Email, &p.Role, &p.CreatedAt, &p.TrialEndsAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Upsert(ctx context.Context, p *Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_profiles (uid, email, role, created_at, trial_ends_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid) DO UPDATE
		SET email = EXCLUDED.email, role = EXCLUDED.role, trial_ends_at = EXCLUDED.trial_ends_at
	`, p.UID, p.Email, string(p.Role), p.CreatedAt, p.TrialEndsAt)
	return err
}
