// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/mariposa-labs/storefront/internal/auth"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == auth.RoleAdmin
}
