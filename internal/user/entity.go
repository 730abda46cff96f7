// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           int64      `db:"id"`
	PrefixName   *string    `db:"prefixname"`
	FirstName    string     `db:"firstname"`
	MiddleName   *string    `db:"middlename"`
	LastName     string     `db:"lastname"`
	SuffixName   *string    `db:"suffixname"`
	Email        string     `db:"email"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	Photo        *string    `db:"photo"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) FullName() string {
	return FullName(u.FirstName, deref(u.MiddleName), u.LastName)
}

func (u *User) MiddleInitial() string {
	return MiddleInitial(deref(u.MiddleName))
}

func (u *User) Gender() string {
	return Gender(deref(u.PrefixName))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
