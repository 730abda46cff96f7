// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/angelamos/userbase/internal/core"
	"github.com/angelamos/userbase/internal/detail"
	"github.com/angelamos/userbase/internal/event"
	"github.com/angelamos/userbase/internal/storage"
)

// photoPrefix is the logical bucket all profile photos land under.
const photoPrefix = "photo"

type Service struct {
	repo    Repository
	details detail.Repository
	store   storage.Store
	events  event.Dispatcher
}

func NewService(
	repo Repository,
	details detail.Repository,
	store storage.Store,
	events event.Dispatcher,
) *Service {
	return &Service{
		repo:    repo,
		details: details,
		store:   store,
		events:  events,
	}
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) ListTrashed(
	ctx context.Context,
	params ListParams,
) ([]User, int, error) {
	return s.repo.ListTrashed(ctx, params)
}

// Store creates a user. The photo, when present, is uploaded before the
// row is written; a crash in between leaves an orphaned blob (accepted,
// see the storage notes in DESIGN.md).
func (s *Service) Store(
	ctx context.Context,
	req CreateUserRequest,
	photo *PhotoUpload,
) (*User, error) {
	user := &User{
		PrefixName: optional(req.PrefixName),
		FirstName:  req.FirstName,
		MiddleName: optional(req.MiddleName),
		LastName:   req.LastName,
		SuffixName: optional(req.SuffixName),
		Email:      strings.ToLower(req.Email),
		Username:   req.Username,
	}

	if photo != nil {
		key, err := s.Upload(ctx, photo)
		if err != nil {
			return nil, err
		}
		user.Photo = &key
	}

	hash, err := s.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.dispatchSaved(ctx, user.ID)

	return user, nil
}

func (s *Service) Find(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update overwrites every profile field from req. An empty password keeps
// the stored hash; a new photo is uploaded before the old blob is removed,
// and the old blob is only removed once the row update went through.
func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateUserRequest,
	photo *PhotoUpload,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Password != "" {
		hash, hashErr := s.Hash(req.Password)
		if hashErr != nil {
			return nil, fmt.Errorf("hash password: %w", hashErr)
		}
		user.PasswordHash = hash
	}

	var oldPhoto string
	if photo != nil {
		key, upErr := s.Upload(ctx, photo)
		if upErr != nil {
			return nil, upErr
		}
		oldPhoto = deref(user.Photo)
		user.Photo = &key
	}

	user.PrefixName = optional(req.PrefixName)
	user.FirstName = req.FirstName
	user.MiddleName = optional(req.MiddleName)
	user.LastName = req.LastName
	user.SuffixName = optional(req.SuffixName)
	user.Email = strings.ToLower(req.Email)
	user.Username = req.Username

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if oldPhoto != "" {
		if delErr := s.store.Delete(ctx, oldPhoto); delErr != nil {
			slog.Warn("delete replaced photo",
				"user_id", user.ID,
				"key", oldPhoto,
				"error", delErr,
			)
		}
	}

	s.dispatchSaved(ctx, user.ID)

	return user, nil
}

func (s *Service) Destroy(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id int64) error {
	return s.repo.Restore(ctx, id)
}

// Delete permanently removes a trashed user. Active users cannot be
// purged directly; they must be soft deleted first.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Purge(ctx, id)
}

func (s *Service) Hash(secret string) (string, error) {
	return core.HashPassword(secret)
}

func (s *Service) Upload(
	ctx context.Context,
	photo *PhotoUpload,
) (string, error) {
	key := fmt.Sprintf(
		"%s/%s%s",
		photoPrefix,
		uuid.New().String(),
		strings.ToLower(filepath.Ext(photo.Filename)),
	)

	stored, err := s.store.Store(ctx, key, photo.ContentType, photo.Data)
	if err != nil {
		return "", fmt.Errorf("upload photo: %w (%w)", err, core.ErrStorage)
	}

	return stored, nil
}

func (s *Service) AvatarURL(u *User) string {
	if u.Photo == nil {
		return ""
	}
	return s.store.URL(*u.Photo)
}

// SaveDetails appends one row per derived field. Absent values are still
// recorded, as NULL-valued rows, and nothing is deduplicated against
// earlier snapshots.
func (s *Service) SaveDetails(ctx context.Context, u *User) error {
	rows := []detail.Detail{
		{UserID: u.ID, Key: detail.KeyFullName, Value: optional(u.FullName())},
		{UserID: u.ID, Key: detail.KeyAvatar, Value: optional(s.AvatarURL(u))},
		{UserID: u.ID, Key: detail.KeyMiddleInitial, Value: optional(u.MiddleInitial())},
		{UserID: u.ID, Key: detail.KeyGender, Value: optional(u.Gender())},
	}

	if err := s.details.AppendAll(ctx, rows); err != nil {
		return fmt.Errorf("save details for user %d: %w", u.ID, err)
	}

	return nil
}

// HandleUserSaved is the user-saved event listener: it re-reads the row
// and snapshots the derived fields. A user deleted between dispatch and
// delivery is skipped.
func (s *Service) HandleUserSaved(
	ctx context.Context,
	evt event.UserSaved,
) error {
	user, err := s.repo.GetByID(ctx, evt.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return err
	}

	return s.SaveDetails(ctx, user)
}

func (s *Service) ListDetails(
	ctx context.Context,
	userID int64,
) ([]detail.Detail, error) {
	return s.details.ListForUser(ctx, userID)
}

// ValidateUnique reports field-level errors for a taken username or email.
// excludeID skips the row being updated so it can keep its own values;
// pass 0 when creating.
func (s *Service) ValidateUnique(
	ctx context.Context,
	username, email string,
	excludeID int64,
) (map[string]string, error) {
	fields := make(map[string]string)

	taken, err := s.repo.UsernameExists(ctx, username, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		fields["username"] = "is already taken"
	}

	taken, err = s.repo.EmailExists(ctx, strings.ToLower(email), excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		fields["email"] = "is already taken"
	}

	if len(fields) == 0 {
		return nil, nil
	}

	return fields, nil
}

func (s *Service) dispatchSaved(ctx context.Context, userID int64) {
	evt := event.UserSaved{UserID: userID}

	if err := s.events.Dispatch(ctx, evt); err != nil {
		// the save itself succeeded; a lost event only delays the
		// detail snapshot until the next save
		slog.Error("dispatch user saved event",
			"user_id", userID,
			"error", err,
		)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
