// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/userbase/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewRepository(db), mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "prefixname", "firstname", "middlename", "lastname",
		"suffixname", "email", "username", "password_hash", "photo",
		"created_at", "updated_at", "deleted_at",
	})
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(
			nil, "jane", nil, "doe", nil,
			"jane@example.com", "jdoe", "hashed", nil,
		).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(1), now, now),
		)

	u := &User{
		FirstName:    "jane",
		LastName:     "doe",
		Email:        "jane@example.com",
		Username:     "jdoe",
		PasswordHash: "hashed",
	}

	err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateDuplicateKey(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{
		FirstName:    "jane",
		LastName:     "doe",
		Email:        "jane@example.com",
		Username:     "jdoe",
		PasswordHash: "hashed",
	})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestRepositoryGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1 AND deleted_at IS NULL").
		WithArgs(int64(7)).
		WillReturnRows(userRows().AddRow(
			int64(7), nil, "jane", nil, "doe", nil,
			"jane@example.com", "jdoe", "hashed", nil,
			now, now, nil,
		))

	u, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", u.Username)
	assert.False(t, u.IsDeleted())
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1 AND deleted_at IS NULL").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryGetTrashedByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1 AND deleted_at IS NOT NULL").
		WithArgs(int64(7)).
		WillReturnRows(userRows().AddRow(
			int64(7), nil, "jane", nil, "doe", nil,
			"jane@example.com", "jdoe", "hashed", nil,
			now, now, now,
		))

	u, err := repo.GetTrashedByID(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, u.IsDeleted())
}

func TestRepositorySoftDeleteNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET deleted_at = NOW\\(\\)").
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), 404)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositorySoftDeleteAndRestore(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET deleted_at = NOW\\(\\)").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET deleted_at = NULL").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), 7))
	require.NoError(t, repo.Restore(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryPurgeRequiresTrashedRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	// an active row never matches the trashed-only predicate
	mock.ExpectExec("DELETE FROM users WHERE id = \\$1 AND deleted_at IS NOT NULL").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Purge(context.Background(), 7)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE deleted_at IS NULL").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))

	mock.ExpectQuery("SELECT (.+) FROM users WHERE deleted_at IS NULL ORDER BY id LIMIT \\$1 OFFSET \\$2").
		WithArgs(PageSize, 10).
		WillReturnRows(userRows().AddRow(
			int64(11), nil, "jane", nil, "doe", nil,
			"jane@example.com", "jdoe", "hashed", nil,
			now, now, nil,
		))

	users, total, err := repo.List(context.Background(), ListParams{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 23, total)
	require.Len(t, users, 1)
	assert.Equal(t, int64(11), users[0].ID)
}

func TestRepositoryListTrashed(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE deleted_at IS NOT NULL").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery("SELECT (.+) FROM users WHERE deleted_at IS NOT NULL ORDER BY id LIMIT \\$1 OFFSET \\$2").
		WithArgs(PageSize, 0).
		WillReturnRows(userRows())

	users, total, err := repo.ListTrashed(context.Background(), ListParams{Page: 1})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, users)
}

func TestRepositoryUsernameExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE username = \\$1 AND id <> \\$2\\)").
		WithArgs("jdoe", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.UsernameExists(context.Background(), "jdoe", 7)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestRepositoryEmailExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users WHERE email = \\$1 AND id <> \\$2\\)").
		WithArgs("jane@example.com", int64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	taken, err := repo.EmailExists(context.Background(), "jane@example.com", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}
