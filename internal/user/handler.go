// AngelaMos | 2026
// handler.go

package user

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/userbase/internal/config"
	"github.com/angelamos/userbase/internal/core"
	"github.com/angelamos/userbase/internal/detail"
)

const (
	maxUploadBytes = 10 << 20
	minPhotoBytes  = 3 << 10
)

type Handler struct {
	service   *Service
	validator *validator.Validate
	password  config.PasswordConfig
}

func NewHandler(service *Service, password config.PasswordConfig) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		password:  password,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.StoreUser)
		r.Get("/trashed", h.ListTrashed)

		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Put("/", h.UpdateUser)
			r.Delete("/", h.DestroyUser)
			r.Put("/restore", h.RestoreUser)
			r.Delete("/purge", h.PurgeUser)
		})
	})
}

// ListUsers returns a page of active users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListParams{Page: parseIntQuery(r, "page", 1)}
	params.Normalize()

	users, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users, h.service.AvatarURL),
		params.Page,
		PageSize,
		total,
	)
}

// ListTrashed returns a page of soft-deleted users.
func (h *Handler) ListTrashed(w http.ResponseWriter, r *http.Request) {
	params := ListParams{Page: parseIntQuery(r, "page", 1)}
	params.Normalize()

	users, total, err := h.service.ListTrashed(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users, h.service.AvatarURL),
		params.Page,
		PageSize,
		total,
	)
}

func (h *Handler) StoreUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	photo, fields, err := h.decodeRequest(r, &req)
	if err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if vErr := h.validator.Struct(req); vErr != nil {
		mergeFields(fields, core.FieldErrors(vErr))
	}
	if req.Password != "" && len(req.Password) < h.password.MinLength {
		fields["password"] = fmt.Sprintf(
			"must be at least %d characters",
			h.password.MinLength,
		)
	}

	if len(fields) == 0 {
		unique, uErr := h.service.ValidateUnique(
			r.Context(),
			req.Username,
			req.Email,
			0,
		)
		if uErr != nil {
			core.InternalServerError(w, uErr)
			return
		}
		mergeFields(fields, unique)
	}

	if len(fields) > 0 {
		core.UnprocessableEntity(w, fields)
		return
	}

	user, err := h.service.Store(r.Context(), req, photo)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.Created(w, ToUserResponse(user, h.service.AvatarURL(user)))
}

// GetUser returns the user plus its accumulated detail snapshots.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.Find(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	details, err := h.service.ListDetails(r.Context(), id)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ShowUserResponse{
		UserResponse: ToUserResponse(user, h.service.AvatarURL(user)),
		Details:      detail.ToDetailResponseList(details),
	})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	photo, fields, err := h.decodeRequest(r, &req)
	if err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if vErr := h.validator.Struct(req); vErr != nil {
		mergeFields(fields, core.FieldErrors(vErr))
	}
	if req.Password != "" && len(req.Password) < h.password.MinLength {
		fields["password"] = fmt.Sprintf(
			"must be at least %d characters",
			h.password.MinLength,
		)
	}

	if len(fields) == 0 {
		// the row's own username/email must not trip the check
		unique, uErr := h.service.ValidateUnique(
			r.Context(),
			req.Username,
			req.Email,
			id,
		)
		if uErr != nil {
			core.InternalServerError(w, uErr)
			return
		}
		mergeFields(fields, unique)
	}

	if len(fields) > 0 {
		core.UnprocessableEntity(w, fields)
		return
	}

	user, err := h.service.Update(r.Context(), id, req, photo)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToUserResponse(user, h.service.AvatarURL(user)))
}

// DestroyUser soft deletes; the row stays recoverable via restore.
func (h *Handler) DestroyUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Destroy(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) RestoreUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Restore(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.NoContent(w)
}

// PurgeUser permanently deletes an already-trashed user.
func (h *Handler) PurgeUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.NoContent(w)
}

type ShowUserResponse struct {
	UserResponse
	Details []detail.DetailResponse `json:"details"`
}

// decodeRequest fills dst from either a JSON body or a multipart form;
// only multipart forms can carry a photo. Photo problems come back in the
// fields map so they render as field-level validation errors.
func (h *Handler) decodeRequest(
	r *http.Request,
	dst any,
) (*PhotoUpload, map[string]string, error) {
	fields := make(map[string]string)

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return nil, nil, err
		}
		return nil, fields, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, err
	}

	switch req := dst.(type) {
	case *CreateUserRequest:
		*req = CreateUserRequest{
			PrefixName: r.FormValue("prefixname"),
			FirstName:  r.FormValue("firstname"),
			MiddleName: r.FormValue("middlename"),
			LastName:   r.FormValue("lastname"),
			SuffixName: r.FormValue("suffixname"),
			Email:      r.FormValue("email"),
			Username:   r.FormValue("username"),
			Password:   r.FormValue("password"),
		}
	case *UpdateUserRequest:
		*req = UpdateUserRequest{
			PrefixName: r.FormValue("prefixname"),
			FirstName:  r.FormValue("firstname"),
			MiddleName: r.FormValue("middlename"),
			LastName:   r.FormValue("lastname"),
			SuffixName: r.FormValue("suffixname"),
			Email:      r.FormValue("email"),
			Username:   r.FormValue("username"),
			Password:   r.FormValue("password"),
		}
	default:
		return nil, nil, fmt.Errorf("unsupported request type %T", dst)
	}

	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, fields, nil
	}
	if err != nil {
		return nil, nil, err
	}

	photo, photoFields := validatePhoto(file, header)
	mergeFields(fields, photoFields)

	return photo, fields, nil
}

// validatePhoto enforces the photo constraints: an image of at least 3 KB.
// The content type is sniffed from the bytes, not trusted from the client.
func validatePhoto(
	file multipart.File,
	header *multipart.FileHeader,
) (*PhotoUpload, map[string]string) {
	fields := make(map[string]string)

	if header.Size < minPhotoBytes {
		fields["photo"] = "must be an image of at least 3KB"
		return nil, fields
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		fields["photo"] = "could not be read"
		return nil, fields
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		fields["photo"] = "must be an image"
		return nil, fields
	}

	return &PhotoUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Data:        io.MultiReader(bytes.NewReader(head), file),
	}, fields
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrDuplicateKey):
		core.UnprocessableEntity(w, map[string]string{
			"username": "username or email is already taken",
		})
	case errors.Is(err, core.ErrStorage):
		core.BadGateway(w, err)
	default:
		core.InternalServerError(w, err)
	}
}

func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "userID")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		core.BadRequest(w, "invalid user id")
		return 0, false
	}

	return id, true
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func mergeFields(dst, src map[string]string) {
	for k, v := range src {
		if _, ok := dst[k]; !ok {
			dst[k] = v
		}
	}
}
