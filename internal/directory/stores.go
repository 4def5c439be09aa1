package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusgate/campusgate/internal/shared"
)

// Store exposes the read paths over the identity stores consumed by the
// resolver, the credential verifier, and the session refresh.
type Store interface {
	FindFacultyByEmail(ctx context.Context, email string) (*FacultyRecord, error)
	FindSuperAdminByEmail(ctx context.Context, email string) (*SuperAdminRecord, error)
	FindStudentByEmail(ctx context.Context, email string) (*StudentRecord, error)
}

// PasswordStore adds the write path used by the password-reset flow.
type PasswordStore interface {
	Store
	UpdatePassword(ctx context.Context, role Role, email, hash string) error
}

// Client implements the store interfaces against PostgreSQL. It is
// constructed explicitly with an injected pool; the pool's lifecycle is
// owned by the caller.
type Client struct {
	pool *pgxpool.Pool
}

// NewClient constructs a Client.
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// FindFacultyByEmail fetches a faculty row by email.
func (c *Client) FindFacultyByEmail(ctx context.Context, email string) (*FacultyRecord, error) {
	const query = `SELECT faculty_id, employee_id, full_name, email, is_dept_admin, password
		FROM faculty WHERE email = $1`
	var (
		rec  FacultyRecord
		hash pgtype.Text
	)
	err := c.pool.QueryRow(ctx, query, email).Scan(&rec.ID, &rec.EmployeeID, &rec.FullName, &rec.Email, &rec.IsDeptAdmin, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("directory: find faculty: %w", err)
	}
	rec.PasswordHash = hash.String
	return &rec, nil
}

// FindSuperAdminByEmail fetches a super admin row by email.
func (c *Client) FindSuperAdminByEmail(ctx context.Context, email string) (*SuperAdminRecord, error) {
	const query = `SELECT id, admin_id, full_name, email, password
		FROM super_admins WHERE email = $1`
	var (
		rec  SuperAdminRecord
		hash pgtype.Text
	)
	err := c.pool.QueryRow(ctx, query, email).Scan(&rec.ID, &rec.AdminID, &rec.FullName, &rec.Email, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("directory: find super admin: %w", err)
	}
	rec.PasswordHash = hash.String
	return &rec, nil
}

// FindStudentByEmail fetches a student row by email.
func (c *Client) FindStudentByEmail(ctx context.Context, email string) (*StudentRecord, error) {
	const query = `SELECT student_id, full_name, email, roll_number, password
		FROM students WHERE email = $1`
	var (
		rec  StudentRecord
		hash pgtype.Text
	)
	err := c.pool.QueryRow(ctx, query, email).Scan(&rec.ID, &rec.FullName, &rec.Email, &rec.RollNumber, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("directory: find student: %w", err)
	}
	rec.PasswordHash = hash.String
	return &rec, nil
}

// UpdatePassword overwrites the stored hash for the store owning the role.
func (c *Client) UpdatePassword(ctx context.Context, role Role, email, hash string) error {
	var query string
	switch role {
	case RoleStudent:
		query = `UPDATE students SET password = $1 WHERE email = $2`
	case RoleFaculty, RoleDeptAdmin:
		query = `UPDATE faculty SET password = $1 WHERE email = $2`
	case RoleSuperAdmin:
		query = `UPDATE super_admins SET password = $1 WHERE email = $2`
	default:
		return fmt.Errorf("directory: update password: unknown role %q", role)
	}
	tag, err := c.pool.Exec(ctx, query, hash, email)
	if err != nil {
		return fmt.Errorf("directory: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ PasswordStore = (*Client)(nil)
