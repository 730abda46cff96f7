// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/userbase/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetTrashedByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, user *User) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	Purge(ctx context.Context, id int64) error
	List(ctx context.Context, params ListParams) ([]User, int, error)
	ListTrashed(ctx context.Context, params ListParams) ([]User, int, error)
	UsernameExists(
		ctx context.Context,
		username string,
		excludeID int64,
	) (bool, error)
	EmailExists(
		ctx context.Context,
		email string,
		excludeID int64,
	) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, prefixname, firstname, middlename, lastname, suffixname,
	email, username, password_hash, photo, created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			prefixname, firstname, middlename, lastname, suffixname,
			email, username, password_hash, photo
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.PrefixName,
		user.FirstName,
		user.MiddleName,
		user.LastName,
		user.SuffixName,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Photo,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetTrashedByID(
	ctx context.Context,
	id int64,
) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = $1 AND deleted_at IS NOT NULL`, userColumns)

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get trashed user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get trashed user: %w", err)
	}

	return &user, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET prefixname = $2, firstname = $3, middlename = $4, lastname = $5,
		    suffixname = $6, email = $7, username = $8, password_hash = $9,
		    photo = $10, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.PrefixName,
		user.FirstName,
		user.MiddleName,
		user.LastName,
		user.SuffixName,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Photo,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("update user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	return r.execExpectingRow(ctx, "soft delete user", query, id)
}

func (r *repository) Restore(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL`

	return r.execExpectingRow(ctx, "restore user", query, id)
}

// Purge permanently removes a row, but only from the trashed scope:
// an active user must be soft deleted first.
func (r *repository) Purge(ctx context.Context, id int64) error {
	query := `
		DELETE FROM users
		WHERE id = $1 AND deleted_at IS NOT NULL`

	return r.execExpectingRow(ctx, "purge user", query, id)
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]User, int, error) {
	return r.list(ctx, params, false)
}

func (r *repository) ListTrashed(
	ctx context.Context,
	params ListParams,
) ([]User, int, error) {
	return r.list(ctx, params, true)
}

func (r *repository) list(
	ctx context.Context,
	params ListParams,
	trashed bool,
) ([]User, int, error) {
	params.Normalize()

	predicate := "deleted_at IS NULL"
	if trashed {
		predicate = "deleted_at IS NOT NULL"
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE %s",
		predicate,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY id
		LIMIT $1 OFFSET $2`, userColumns, predicate)

	var users []User
	err := r.db.SelectContext(ctx, &users, query, PageSize, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) UsernameExists(
	ctx context.Context,
	username string,
	excludeID int64,
) (bool, error) {
	// table-wide on purpose: trashed rows still reserve their username
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id <> $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username, excludeID)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}

	return exists, nil
}

func (r *repository) EmailExists(
	ctx context.Context,
	email string,
	excludeID int64,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND id <> $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email, excludeID)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}

	return exists, nil
}

func (r *repository) execExpectingRow(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
