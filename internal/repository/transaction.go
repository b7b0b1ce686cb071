package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"visa-advisory-portal/config"
)

// beginTX : rollback is safe to defer after commit
func beginTX(ctx context.Context, db *config.Database) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, tx.Rollback, tx.Commit, nil
}
