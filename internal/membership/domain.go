// internal/membership/domain.go
package membership

import (
	"time"

	"github.com/google/uuid"
)

// User is a library account. Students borrow; admins manage inventory and
// approve requests. The circulation engine only ever sees the id and role,
// plus the display fields joined into its read views.
type User struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Salt          string    `db:"salt" json:"-"`
	Role          string    `db:"role" json:"role"`
	StudentNumber string    `db:"student_number" json:"student_number"`
	MobileNo      string    `db:"mobile_no" json:"mobile_no"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// ValidRole reports whether role is one of the two known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStudent
}
