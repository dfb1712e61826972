// internal/membership/implementation.go
package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/time/rate"

	"librakeep/internal/errs"
	"librakeep/internal/store"
)

// service implements the Service interface.
type service struct {
	store       *store.Store
	rateLimiter *rate.Limiter
}

// NewService creates a new membership service instance. Registration is rate
// limited to blunt signup floods.
func NewService(st *store.Store) Service {
	return &service{
		store:       st,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute), 5),
	}
}

const userColumns = `id, name, email, password_hash, salt, role, student_number, mobile_no, created_at`

// Register creates a new account with a salted Argon2id credential.
func (s *service) Register(ctx context.Context, name, email, password, role, studentNumber, mobileNo string) (*User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errs.Validation("name", "must be provided")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.Validation("email", "must be a valid email address")
	}
	if len(password) < 8 {
		return nil, errs.Validation("password", "must be at least 8 characters")
	}
	if role == "" {
		role = RoleStudent
	}
	if !ValidRole(role) {
		return nil, errs.Validation("role", "must be admin or student")
	}

	if !s.rateLimiter.Allow() {
		return nil, errs.ErrRateLimited
	}

	hash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:            uuid.New(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Salt:          salt,
		Role:          role,
		StudentNumber: studentNumber,
		MobileNo:      mobileNo,
		CreatedAt:     time.Now().UTC(),
	}

	err = s.store.WithinTx(ctx, "membership.register", func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, name, email, password_hash, salt, role, student_number, mobile_no, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, user.ID, user.Name, user.Email, user.PasswordHash, user.Salt, user.Role, user.StudentNumber, user.MobileNo, user.CreatedAt)
		if err != nil {
			if store.IsUniqueViolation(err, "users_email_key") {
				return errs.ErrDuplicateEmail
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies email and password and returns the account.
func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user User
	err := s.store.DB.GetContext(ctx, &user, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	ok, err := verifyPassword(password, user.Salt, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, errs.ErrInvalidCredentials
	}

	return &user, nil
}

// GetUser retrieves an account by id.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := s.store.DB.GetContext(ctx, &user, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)
	if err != nil {
		return nil, store.NotFound(err)
	}
	return &user, nil
}

// ListStudents returns every student account in stable order.
func (s *service) ListStudents(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.store.DB.SelectContext(ctx, &users, `
		SELECT `+userColumns+` FROM users WHERE role = 'student' ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return users, nil
}

// SearchStudents finds students by name, email or student number.
func (s *service) SearchStudents(ctx context.Context, keyword string) ([]*User, error) {
	var users []*User
	err := s.store.DB.SelectContext(ctx, &users, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = 'student'
		  AND (name ILIKE $1 OR email ILIKE $1 OR student_number ILIKE $1)
		ORDER BY created_at ASC, id ASC
	`, "%"+keyword+"%")
	if err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return users, nil
}
