// AngelaMos | 2026
// repository.go

package detail

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/userbase/internal/core"
)

type Repository interface {
	AppendAll(ctx context.Context, details []Detail) error
	ListForUser(ctx context.Context, userID int64) ([]Detail, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// AppendAll inserts every given detail row in one transaction, so a save
// event either records its full snapshot or nothing.
func (r *repository) AppendAll(ctx context.Context, details []Detail) error {
	if len(details) == 0 {
		return nil
	}

	query := `
		INSERT INTO details (user_id, key, value)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range details {
			d := &details[i]
			if err := tx.GetContext(ctx, d, query, d.UserID, d.Key, d.Value); err != nil {
				return fmt.Errorf("append detail %q: %w", d.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append details: %w", err)
	}

	return nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID int64,
) ([]Detail, error) {
	query := `
		SELECT id, user_id, key, value, created_at, updated_at
		FROM details
		WHERE user_id = $1
		ORDER BY id`

	var details []Detail
	if err := r.db.SelectContext(ctx, &details, query, userID); err != nil {
		return nil, fmt.Errorf("list details: %w", err)
	}

	return details, nil
}
