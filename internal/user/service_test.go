// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/userbase/internal/core"
	"github.com/angelamos/userbase/internal/detail"
	"github.com/angelamos/userbase/internal/event"
)

type fakeRepo struct {
	users     map[int64]*User
	nextID    int64
	usernames map[string]int64
	emails    map[string]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:     make(map[int64]*User),
		nextID:    1,
		usernames: make(map[string]int64),
		emails:    make(map[string]int64),
	}
}

func (r *fakeRepo) Create(_ context.Context, user *User) error {
	user.ID = r.nextID
	r.nextID++

	clone := *user
	r.users[user.ID] = &clone
	r.usernames[user.Username] = user.ID
	r.emails[user.Email] = user.ID
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok || u.IsDeleted() {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	clone := *u
	return &clone, nil
}

func (r *fakeRepo) GetTrashedByID(_ context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok || !u.IsDeleted() {
		return nil, fmt.Errorf("get trashed user: %w", core.ErrNotFound)
	}
	clone := *u
	return &clone, nil
}

func (r *fakeRepo) Update(_ context.Context, user *User) error {
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeRepo) SoftDelete(_ context.Context, id int64) error { return nil }
func (r *fakeRepo) Restore(_ context.Context, id int64) error    { return nil }
func (r *fakeRepo) Purge(_ context.Context, id int64) error      { return nil }

func (r *fakeRepo) List(
	_ context.Context,
	_ ListParams,
) ([]User, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) ListTrashed(
	_ context.Context,
	_ ListParams,
) ([]User, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) UsernameExists(
	_ context.Context,
	username string,
	excludeID int64,
) (bool, error) {
	id, ok := r.usernames[username]
	return ok && id != excludeID, nil
}

func (r *fakeRepo) EmailExists(
	_ context.Context,
	email string,
	excludeID int64,
) (bool, error) {
	id, ok := r.emails[email]
	return ok && id != excludeID, nil
}

type fakeDetails struct {
	appended []detail.Detail
	err      error
}

func (d *fakeDetails) AppendAll(_ context.Context, details []detail.Detail) error {
	if d.err != nil {
		return d.err
	}
	d.appended = append(d.appended, details...)
	return nil
}

func (d *fakeDetails) ListForUser(
	_ context.Context,
	userID int64,
) ([]detail.Detail, error) {
	var out []detail.Detail
	for _, row := range d.appended {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeStore struct {
	stored   map[string]string
	deleted  []string
	storeErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{stored: make(map[string]string)}
}

func (s *fakeStore) Store(
	_ context.Context,
	key, contentType string,
	body io.Reader,
) (string, error) {
	if s.storeErr != nil {
		return "", s.storeErr
	}
	data, _ := io.ReadAll(body)
	s.stored[key] = string(data)
	return key, nil
}

func (s *fakeStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + key
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) Ping(_ context.Context) error { return nil }

type fakeDispatcher struct {
	events []event.UserSaved
	err    error
}

func (d *fakeDispatcher) Dispatch(_ context.Context, evt event.UserSaved) error {
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, evt)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeDetails, *fakeStore, *fakeDispatcher) {
	repo := newFakeRepo()
	details := &fakeDetails{}
	store := newFakeStore()
	dispatcher := &fakeDispatcher{}
	svc := NewService(repo, details, store, dispatcher)
	return svc, repo, details, store, dispatcher
}

func TestServiceStore(t *testing.T) {
	svc, repo, _, _, dispatcher := newTestService()

	user, err := svc.Store(context.Background(), CreateUserRequest{
		PrefixName: "Ms.",
		FirstName:  "jane",
		MiddleName: "alice",
		LastName:   "doe",
		Email:      "Jane@Example.COM",
		Username:   "jdoe",
		Password:   "hunter2hunter2",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Nil(t, user.Photo)

	// never the plaintext
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	ok, err := core.VerifyPassword("hunter2hunter2", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, user.ID, dispatcher.events[0].UserID)

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", stored.Username)
}

func TestServiceStoreWithPhoto(t *testing.T) {
	svc, _, _, store, _ := newTestService()

	photo := &PhotoUpload{
		Filename:    "selfie.PNG",
		ContentType: "image/png",
		Size:        4096,
		Data:        strings.NewReader("fake image bytes"),
	}

	user, err := svc.Store(context.Background(), CreateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
		Password:  "hunter2hunter2",
	}, photo)
	require.NoError(t, err)

	require.NotNil(t, user.Photo)
	assert.True(t, strings.HasPrefix(*user.Photo, "photo/"))
	assert.True(t, strings.HasSuffix(*user.Photo, ".png"))
	assert.Equal(t, "fake image bytes", store.stored[*user.Photo])
	assert.Equal(t, "https://cdn.test/"+*user.Photo, svc.AvatarURL(user))
}

func TestServiceStoreUploadFailure(t *testing.T) {
	svc, repo, _, store, _ := newTestService()
	store.storeErr = errors.New("connection refused")

	_, err := svc.Store(context.Background(), CreateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
		Password:  "hunter2hunter2",
	}, &PhotoUpload{
		Filename: "x.png",
		Data:     strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrStorage)

	// the row must not have been written
	assert.Empty(t, repo.users)
}

func TestServiceStoreDispatchFailureDoesNotFail(t *testing.T) {
	svc, _, _, _, dispatcher := newTestService()
	dispatcher.err = errors.New("queue unavailable")

	user, err := svc.Store(context.Background(), CreateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
		Password:  "hunter2hunter2",
	}, nil)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestServiceUpdateKeepsHashOnEmptyPassword(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	user, err := svc.Store(context.Background(), CreateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
		Password:  "hunter2hunter2",
	}, nil)
	require.NoError(t, err)
	originalHash := user.PasswordHash

	updated, err := svc.Update(context.Background(), user.ID, UpdateUserRequest{
		FirstName: "janet",
		LastName:  "doe",
		Email:     "janet@example.com",
		Username:  "jdoe",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, originalHash, updated.PasswordHash)
	assert.Equal(t, "janet", updated.FirstName)
	assert.Equal(t, "janet@example.com", updated.Email)
}

func TestServiceUpdateRehashesNewPassword(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	user, err := svc.Store(context.Background(), CreateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
		Password:  "hunter2hunter2",
	}, nil)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), user.ID, UpdateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
		Password:  "a brand new secret",
	}, nil)
	require.NoError(t, err)

	ok, err := core.VerifyPassword("a brand new secret", updated.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServiceUpdateReplacesPhoto(t *testing.T) {
	svc, _, _, store, _ := newTestService()

	user, err := svc.Store(context.Background(), CreateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
		Password:  "hunter2hunter2",
	}, &PhotoUpload{
		Filename: "old.png",
		Data:     strings.NewReader("old"),
	})
	require.NoError(t, err)
	oldKey := *user.Photo

	updated, err := svc.Update(context.Background(), user.ID, UpdateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
	}, &PhotoUpload{
		Filename: "new.jpg",
		Data:     strings.NewReader("new"),
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Photo)
	assert.NotEqual(t, oldKey, *updated.Photo)
	assert.True(t, strings.HasSuffix(*updated.Photo, ".jpg"))
	assert.Contains(t, store.deleted, oldKey)
}

func TestServiceUpdateNotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Update(context.Background(), 404, UpdateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
	}, nil)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestServiceHandleUserSaved(t *testing.T) {
	svc, _, details, _, _ := newTestService()

	user, err := svc.Store(context.Background(), CreateUserRequest{
		PrefixName: "Mrs.",
		FirstName:  "jane",
		MiddleName: "alice",
		LastName:   "doe",
		Email:      "jane@example.com",
		Username:   "jdoe",
		Password:   "hunter2hunter2",
	}, &PhotoUpload{
		Filename: "p.png",
		Data:     strings.NewReader("img"),
	})
	require.NoError(t, err)

	err = svc.HandleUserSaved(
		context.Background(),
		event.UserSaved{UserID: user.ID},
	)
	require.NoError(t, err)

	byKey := make(map[string]*string)
	for _, d := range details.appended {
		byKey[d.Key] = d.Value
	}

	require.Len(t, details.appended, 4)
	require.NotNil(t, byKey[detail.KeyFullName])
	assert.Equal(t, "Jane A. Doe", *byKey[detail.KeyFullName])
	require.NotNil(t, byKey[detail.KeyMiddleInitial])
	assert.Equal(t, "A.", *byKey[detail.KeyMiddleInitial])
	require.NotNil(t, byKey[detail.KeyGender])
	assert.Equal(t, "Female", *byKey[detail.KeyGender])
	require.NotNil(t, byKey[detail.KeyAvatar])
	assert.True(t, strings.HasPrefix(*byKey[detail.KeyAvatar], "https://cdn.test/photo/"))
}

func TestServiceHandleUserSavedNullsForAbsentFields(t *testing.T) {
	svc, _, details, _, _ := newTestService()

	user, err := svc.Store(context.Background(), CreateUserRequest{
		FirstName: "john",
		LastName:  "doe",
		Email:     "john@example.com",
		Username:  "john",
		Password:  "hunter2hunter2",
	}, nil)
	require.NoError(t, err)

	err = svc.HandleUserSaved(
		context.Background(),
		event.UserSaved{UserID: user.ID},
	)
	require.NoError(t, err)

	byKey := make(map[string]*string)
	for _, d := range details.appended {
		byKey[d.Key] = d.Value
	}

	// the snapshot always records all four keys, absent ones as NULL
	require.Len(t, details.appended, 4)
	assert.Nil(t, byKey[detail.KeyAvatar])
	assert.Nil(t, byKey[detail.KeyMiddleInitial])
	assert.Nil(t, byKey[detail.KeyGender])
	require.NotNil(t, byKey[detail.KeyFullName])
	assert.Equal(t, "John Doe", *byKey[detail.KeyFullName])
}

func TestServiceHandleUserSavedSkipsMissingUser(t *testing.T) {
	svc, _, details, _, _ := newTestService()

	err := svc.HandleUserSaved(
		context.Background(),
		event.UserSaved{UserID: 999},
	)
	require.NoError(t, err)
	assert.Empty(t, details.appended)
}

func TestServiceValidateUnique(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Store(ctx, CreateUserRequest{
		FirstName: "jane",
		LastName:  "doe",
		Email:     "jane@example.com",
		Username:  "jdoe",
		Password:  "hunter2hunter2",
	}, nil)
	require.NoError(t, err)

	// someone else claiming the same identifiers
	fields, err := svc.ValidateUnique(ctx, "jdoe", "jane@example.com", 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"username": "is already taken",
		"email":    "is already taken",
	}, fields)

	// the row keeping its own identifiers on update
	fields, err = svc.ValidateUnique(ctx, "jdoe", "jane@example.com", user.ID)
	require.NoError(t, err)
	assert.Nil(t, fields)

	// email lookup is case-insensitive
	fields, err = svc.ValidateUnique(ctx, "other", "JANE@example.com", 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"email": "is already taken"}, fields)

	fields, err = svc.ValidateUnique(ctx, "fresh", "fresh@example.com", 0)
	require.NoError(t, err)
	assert.Nil(t, fields)
}
