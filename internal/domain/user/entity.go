// internal/domain/user/entity.go
package user

import "time"

// Role is the marketplace role of a user. Buyers can apply to become
// sellers; admins are provisioned at startup.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User mirrors the external identity contract (user id + email) and carries
// the marketplace role.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FullName     string `json:"full_name" db:"full_name"`
	Role         string `json:"role" db:"role"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
