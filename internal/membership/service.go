// internal/membership/service.go
package membership

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the membership service.
type Service interface {
	Register(ctx context.Context, name, email, password, role, studentNumber, mobileNo string) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListStudents(ctx context.Context) ([]*User, error)
	SearchStudents(ctx context.Context, keyword string) ([]*User, error)
}
