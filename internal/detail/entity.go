// AngelaMos | 2026
// entity.go

package detail

import (
	"time"
)

// Detail is one denormalized key/value fact about a user, captured as a
// snapshot after every save. Rows are append-only: repeated saves add new
// rows instead of updating earlier ones.
type Detail struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Key       string    `db:"key"`
	Value     *string   `db:"value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	KeyFullName      = "fullname"
	KeyAvatar        = "avatar"
	KeyMiddleInitial = "middle_initial"
	KeyGender        = "gender"
)

type DetailResponse struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     *string   `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

func ToDetailResponseList(details []Detail) []DetailResponse {
	responses := make([]DetailResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, DetailResponse{
			ID:        d.ID,
			Key:       d.Key,
			Value:     d.Value,
			CreatedAt: d.CreatedAt,
		})
	}
	return responses
}
