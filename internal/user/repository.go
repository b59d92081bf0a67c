// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/enhancify/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailAndMobile(ctx context.Context, email, mobile string) (*User, error)
	GetByProviderID(ctx context.Context, provider, providerID string) (*User, error)
	LinkProvider(ctx context.Context, id, provider, providerID string) error
	UpdateProfile(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
	SetActive(ctx context.Context, id string, active bool) error
	PromoteToAdmin(ctx context.Context, id string, premiumUntil time.Time) error
	Delete(ctx context.Context, id string) error
	ListUploadPaths(ctx context.Context, id string) ([]string, error)
	List(ctx context.Context, params ListUsersParams) ([]ListedUser, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `
	id, first_name, last_name, mobile, email, username, password_hash,
	google_id, facebook_id, profile_picture, role, is_active,
	login_count, first_login, last_login,
	plan, subscription_active, subscription_start, subscription_end,
	last_used_date, usage_count, transaction_id,
	created_at, updated_at`

var providerColumns = map[string]string{
	ProviderGoogle:   "google_id",
	ProviderFacebook: "facebook_id",
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, first_name, last_name, mobile, email, username, password_hash,
			google_id, facebook_id, profile_picture, role, plan
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING is_active, first_login, created_at, updated_at`

	row := struct {
		IsActive   bool      `db:"is_active"`
		FirstLogin bool      `db:"first_login"`
		CreatedAt  time.Time `db:"created_at"`
		UpdatedAt  time.Time `db:"updated_at"`
	}{}

	err := r.db.GetContext(ctx, &row, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Mobile,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.GoogleID,
		user.FacebookID,
		user.ProfilePicture,
		user.Role,
		user.Plan,
	)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	user.IsActive = row.IsActive
	user.FirstLogin = row.FirstLogin
	user.CreatedAt = row.CreatedAt
	user.UpdatedAt = row.UpdatedAt

	return nil
}

func (r *repository) getOne(
	ctx context.Context,
	op, where string,
	args ...any,
) (*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + where

	var user User
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user", "id = $1", id)
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	return r.getOne(ctx, "get user by email", "email = $1", email)
}

func (r *repository) GetByEmailAndMobile(
	ctx context.Context,
	email, mobile string,
) (*User, error) {
	return r.getOne(
		ctx,
		"get user by email and mobile",
		"email = $1 AND mobile = $2",
		email,
		mobile,
	)
}

func (r *repository) GetByProviderID(
	ctx context.Context,
	provider, providerID string,
) (*User, error) {
	column, ok := providerColumns[provider]
	if !ok {
		return nil, fmt.Errorf("get user by provider %q: %w", provider, core.ErrInvalidInput)
	}
	return r.getOne(ctx, "get user by provider", column+" = $1", providerID)
}

func (r *repository) LinkProvider(
	ctx context.Context,
	id, provider, providerID string,
) error {
	column, ok := providerColumns[provider]
	if !ok {
		return fmt.Errorf("link provider %q: %w", provider, core.ErrInvalidInput)
	}

	query := fmt.Sprintf(`
		UPDATE users
		SET %s = $2, updated_at = NOW()
		WHERE id = $1`, column)

	return r.execOne(ctx, "link provider", query, id, providerID)
}

func (r *repository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, mobile = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Mobile,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update profile: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) RecordLogin(
	ctx context.Context,
	id string,
	at time.Time,
) error {
	query := `
		UPDATE users
		SET login_count = login_count + 1,
		    last_login = $2,
		    first_login = (login_count = 0),
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "record login", query, id, at)
}

func (r *repository) SetActive(
	ctx context.Context,
	id string,
	active bool,
) error {
	query := `
		UPDATE users
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "set active", query, id, active)
}

func (r *repository) PromoteToAdmin(
	ctx context.Context,
	id string,
	premiumUntil time.Time,
) error {
	query := `
		UPDATE users
		SET role = 'admin',
		    is_active = true,
		    plan = 'premium',
		    subscription_active = true,
		    subscription_start = NOW(),
		    subscription_end = $2,
		    updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "promote admin", query, id, premiumUntil)
}

// Delete removes the user row; owned uploads, results, history and
// payments go with it through ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

func (r *repository) ListUploadPaths(
	ctx context.Context,
	id string,
) ([]string, error) {
	query := `
		SELECT file_path
		FROM extracted_resumes
		WHERE user_id = $1 AND file_path <> ''`

	var paths []string
	if err := r.db.SelectContext(ctx, &paths, query, id); err != nil {
		return nil, fmt.Errorf("list upload paths: %w", err)
	}

	return paths, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]ListedUser, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "u.role <> 'admin'")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(u.email ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	switch params.Status {
	case StatusActive:
		conditions = append(conditions, "u.is_active = true")
	case StatusBlocked:
		conditions = append(conditions, "u.is_active = false")
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users u WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s,
		       (SELECT COUNT(*) FROM optimize_results o WHERE o.user_id = u.id)
		           AS total_analyses
		FROM users u
		WHERE %s
		ORDER BY u.created_at DESC
		LIMIT $%d OFFSET $%d`,
		prefixed("u", userColumns), whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []ListedUser
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) execOne(
	ctx context.Context,
	op, query string,
	args ...any,
) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("%s: %w", op, core.ErrDuplicateKey)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
