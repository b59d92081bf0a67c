// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/enhancify/internal/auth"
	"github.com/carterperez-dev/enhancify/internal/core"
)

var (
	ErrWrongPassword   = errors.New("current password is incorrect")
	ErrAdminProtected  = errors.New("admin accounts cannot be modified")
	ErrNoLocalPassword = errors.New("account has no password")
)

// SessionRevoker ends server side sessions for a user.
type SessionRevoker interface {
	DestroyAllForUser(ctx context.Context, userID string) error
	DestroyOthers(ctx context.Context, userID, keepID string) error
}

// FileRemover deletes stored uploads. Missing files are not an error.
type FileRemover interface {
	Remove(path string) error
}

type Service struct {
	repo     Repository
	sessions SessionRevoker
	files    FileRemover
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	sessions SessionRevoker,
	files FileRemover,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		sessions: sessions,
		files:    files,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) GetByEmailAndMobile(
	ctx context.Context,
	email, mobile string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmailAndMobile(ctx, strings.ToLower(email), mobile)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) Create(ctx context.Context, nu auth.NewUser) (*auth.UserInfo, error) {
	hash := nu.PasswordHash
	user := &User{
		ID:           uuid.New().String(),
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Mobile:       nu.Mobile,
		Email:        strings.ToLower(nu.Email),
		PasswordHash: &hash,
		Role:         RoleUser,
		Plan:         PlanFreemium,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// UpsertOAuth finds the account linked to the provider identity, links an
// existing account with the same email, or creates a new one.
func (s *Service) UpsertOAuth(
	ctx context.Context,
	profile auth.OAuthProfile,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByProviderID(ctx, profile.Provider, profile.ProviderID)
	if err == nil {
		return toUserInfo(user), nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	if profile.Email != "" {
		user, err = s.repo.GetByEmail(ctx, profile.Email)
		switch {
		case err == nil:
			if err := s.repo.LinkProvider(ctx, user.ID, profile.Provider, profile.ProviderID); err != nil {
				return nil, err
			}
			return toUserInfo(user), nil
		case !errors.Is(err, core.ErrNotFound):
			return nil, err
		}
	}

	providerID := profile.ProviderID
	user = &User{
		ID:             uuid.New().String(),
		FirstName:      profile.FirstName,
		LastName:       profile.LastName,
		Email:          profile.Email,
		Username:       profile.Username,
		ProfilePicture: profile.ProfilePicture,
		Role:           RoleUser,
		Plan:           PlanFreemium,
	}
	if user.Email == "" {
		user.Email = profile.Provider + "-" + profile.ProviderID + "@oauth.invalid"
	}

	switch profile.Provider {
	case ProviderGoogle:
		user.GoogleID = &providerID
	case ProviderFacebook:
		user.FacebookID = &providerID
	default:
		return nil, fmt.Errorf("upsert oauth: unknown provider %q: %w", profile.Provider, core.ErrInvalidInput)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	return s.repo.RecordLogin(ctx, userID, at)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Mobile != nil {
		user.Mobile = *req.Mobile
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password, stores the new one and ends
// every other session of the user; keepSessionID stays signed in.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID, keepSessionID string,
	req ChangePasswordRequest,
) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.PasswordHash == nil {
		return ErrNoLocalPassword
	}

	valid, err := core.VerifyPassword(req.CurrentPassword, *user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrWrongPassword
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, newHash); err != nil {
		return err
	}

	if err := s.sessions.DestroyOthers(ctx, userID, keepSessionID); err != nil {
		return fmt.Errorf("end other sessions: %w", err)
	}

	return nil
}

// DeleteAccount hard deletes the user with everything it owns.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	return s.hardDelete(ctx, userID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]ListedUser, int, error) {
	return s.repo.List(ctx, params)
}

// SetActive blocks or unblocks a non-admin account. Blocking ends every
// session the user holds.
func (s *Service) SetActive(ctx context.Context, userID string, active bool) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() {
		return nil, ErrAdminProtected
	}

	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	user.IsActive = active

	if !active {
		if err := s.sessions.DestroyAllForUser(ctx, userID); err != nil {
			s.logger.Error("end blocked user sessions failed",
				"user_id", userID,
				"error", err,
			)
		}
	}

	return user, nil
}

// AdminDelete removes a non-admin account and everything it owns.
func (s *Service) AdminDelete(ctx context.Context, userID string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		return ErrAdminProtected
	}

	return s.hardDelete(ctx, userID)
}

func (s *Service) hardDelete(ctx context.Context, userID string) error {
	paths, err := s.repo.ListUploadPaths(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	if err := s.sessions.DestroyAllForUser(ctx, userID); err != nil {
		s.logger.Error("end deleted user sessions failed", "user_id", userID, "error", err)
	}

	for _, path := range paths {
		if err := s.files.Remove(path); err != nil {
			s.logger.Warn("remove stored upload failed", "path", path, "error", err)
		}
	}

	return nil
}

// EnsureAdmin creates the admin account or promotes an existing one, with a
// premium plan valid for premiumFor.
func (s *Service) EnsureAdmin(
	ctx context.Context,
	nu auth.NewUser,
	premiumFor time.Duration,
) (*User, bool, error) {
	premiumUntil := s.now().Add(premiumFor)

	existing, err := s.repo.GetByEmail(ctx, strings.ToLower(nu.Email))
	if err == nil {
		if err := s.repo.PromoteToAdmin(ctx, existing.ID, premiumUntil); err != nil {
			return nil, false, err
		}
		if err := s.repo.UpdatePassword(ctx, existing.ID, nu.PasswordHash); err != nil {
			return nil, false, err
		}
		promoted, err := s.repo.GetByID(ctx, existing.ID)
		return promoted, false, err
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, err
	}

	info, err := s.Create(ctx, nu)
	if err != nil {
		return nil, false, err
	}

	if err := s.repo.PromoteToAdmin(ctx, info.ID, premiumUntil); err != nil {
		return nil, false, err
	}

	created, err := s.repo.GetByID(ctx, info.ID)
	return created, true, err
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		DisplayName:  u.DisplayName(),
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Plan:         u.Plan,
		IsActive:     u.IsActive,
		LoginCount:   u.LoginCount,
	}
}

var _ auth.UserProvider = (*Service)(nil)
