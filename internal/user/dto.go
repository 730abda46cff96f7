// AngelaMos | 2026
// dto.go

package user

import (
	"io"
	"time"
)

// PageSize is fixed: both listings always return pages of ten.
const PageSize = 10

type CreateUserRequest struct {
	PrefixName string `json:"prefixname" validate:"omitempty,max=60"`
	FirstName  string `json:"firstname"  validate:"required,max=100"`
	MiddleName string `json:"middlename" validate:"omitempty,max=100"`
	LastName   string `json:"lastname"   validate:"required,max=100"`
	SuffixName string `json:"suffixname" validate:"omitempty,max=60"`
	Email      string `json:"email"      validate:"required,email,max=255"`
	Username   string `json:"username"   validate:"required,max=100"`
	Password   string `json:"password"   validate:"required,max=128"`
}

// UpdateUserRequest carries the full field set: updates overwrite every
// profile field, there are no partial-update semantics. An empty password
// means "keep the stored hash".
type UpdateUserRequest struct {
	PrefixName string `json:"prefixname" validate:"omitempty,max=60"`
	FirstName  string `json:"firstname"  validate:"required,max=100"`
	MiddleName string `json:"middlename" validate:"omitempty,max=100"`
	LastName   string `json:"lastname"   validate:"required,max=100"`
	SuffixName string `json:"suffixname" validate:"omitempty,max=60"`
	Email      string `json:"email"      validate:"required,email,max=255"`
	Username   string `json:"username"   validate:"required,max=100"`
	Password   string `json:"password"   validate:"omitempty,max=128"`
}

// PhotoUpload is a validated profile photo on its way to blob storage.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

type UserResponse struct {
	ID            int64      `json:"id"`
	PrefixName    *string    `json:"prefixname,omitempty"`
	FirstName     string     `json:"firstname"`
	MiddleName    *string    `json:"middlename,omitempty"`
	LastName      string     `json:"lastname"`
	SuffixName    *string    `json:"suffixname,omitempty"`
	Email         string     `json:"email"`
	Username      string     `json:"username"`
	Photo         *string    `json:"photo,omitempty"`
	FullName      string     `json:"fullname"`
	MiddleInitial string     `json:"middle_initial,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	Gender        string     `json:"gender,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

type ListParams struct {
	Page int `json:"page"`
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * PageSize
}

func ToUserResponse(u *User, avatarURL string) UserResponse {
	return UserResponse{
		ID:            u.ID,
		PrefixName:    u.PrefixName,
		FirstName:     u.FirstName,
		MiddleName:    u.MiddleName,
		LastName:      u.LastName,
		SuffixName:    u.SuffixName,
		Email:         u.Email,
		Username:      u.Username,
		Photo:         u.Photo,
		FullName:      u.FullName(),
		MiddleInitial: u.MiddleInitial(),
		Avatar:        avatarURL,
		Gender:        u.Gender(),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		DeletedAt:     u.DeletedAt,
	}
}

func ToUserResponseList(
	users []User,
	avatarURL func(*User) string,
) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		responses = append(responses, ToUserResponse(u, avatarURL(u)))
	}
	return responses
}
