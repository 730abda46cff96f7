// AngelaMos | 2026
// repository_test.go

package detail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewRepository(db), mock
}

func strPtr(s string) *string { return &s }

func TestAppendAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	details := []Detail{
		{UserID: 7, Key: KeyFullName, Value: strPtr("Jane A. Doe")},
		{UserID: 7, Key: KeyAvatar, Value: nil},
		{UserID: 7, Key: KeyMiddleInitial, Value: strPtr("A.")},
		{UserID: 7, Key: KeyGender, Value: strPtr("Female")},
	}

	mock.ExpectBegin()
	for i := range details {
		mock.ExpectQuery("INSERT INTO details").
			WithArgs(details[i].UserID, details[i].Key, details[i].Value).
			WillReturnRows(
				sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
					AddRow(int64(i+1), now, now),
			)
	}
	mock.ExpectCommit()

	err := repo.AppendAll(context.Background(), details)
	require.NoError(t, err)

	// RETURNING fills the generated columns
	assert.Equal(t, int64(1), details[0].ID)
	assert.Equal(t, int64(4), details[3].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAllRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO details").
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(1), now, now),
		)
	mock.ExpectQuery("INSERT INTO details").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.AppendAll(context.Background(), []Detail{
		{UserID: 7, Key: KeyFullName, Value: strPtr("Jane Doe")},
		{UserID: 7, Key: KeyGender, Value: nil},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendAllNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	// nothing to insert, nothing touches the database
	err := repo.AppendAll(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery("SELECT (.+) FROM details WHERE user_id = \\$1 ORDER BY id").
		WithArgs(int64(7)).
		WillReturnRows(
			sqlmock.NewRows([]string{
				"id", "user_id", "key", "value", "created_at", "updated_at",
			}).
				AddRow(int64(1), int64(7), KeyFullName, "Jane Doe", now, now).
				AddRow(int64(2), int64(7), KeyAvatar, nil, now, now),
		)

	details, err := repo.ListForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, KeyFullName, details[0].Key)
	assert.Nil(t, details[1].Value)
}
