// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

type UserInfo struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	DisplayName  string
	PasswordHash *string
	Role         string
	Plan         string
	IsActive     bool
	LoginCount   int
}

type NewUser struct {
	FirstName    string
	LastName     string
	Mobile       string
	Email        string
	PasswordHash string
}

// OAuthProfile is what a provider tells us about the person signing in.
type OAuthProfile struct {
	Provider       string
	ProviderID     string
	Email          string
	FirstName      string
	LastName       string
	Username       string
	ProfilePicture string
}

type UserProvider interface {
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByEmailAndMobile(ctx context.Context, email, mobile string) (*UserInfo, error)
	Create(ctx context.Context, user NewUser) (*UserInfo, error)
	UpsertOAuth(ctx context.Context, profile OAuthProfile) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	RecordLogin(ctx context.Context, userID string, at time.Time) error
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, link string) error
}

// ClientMeta describes the caller of a sign in. PreviousToken is the
// credential the client already held, if any; its session is destroyed so a
// sign in always starts from a fresh session id.
type ClientMeta struct {
	UserAgent     string
	IPAddress     string
	PreviousToken string
}

type SigninResult struct {
	User         *UserInfo
	Token        string
	ExpiresAt    time.Time
	IsFirstLogin bool
}

type ServiceConfig struct {
	SessionTTL time.Duration
	ClientURL  string
}

type Service struct {
	jwt      *JWTManager
	sessions SessionStore
	resets   ResetTokenRepository
	users    UserProvider
	mailer   Mailer
	config   ServiceConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	jwt *JWTManager,
	sessions SessionStore,
	resets ResetTokenRepository,
	users UserProvider,
	mailer Mailer,
	cfg ServiceConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		jwt:      jwt,
		sessions: sessions,
		resets:   resets,
		users:    users,
		mailer:   mailer,
		config:   cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*UserInfo, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Mobile:       req.Mobile,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *Service) Signin(
	ctx context.Context,
	req SigninRequest,
	meta ClientMeta,
) (*SigninResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, fmt.Errorf("signin: %w", core.ErrAccountBlocked)
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	return s.startSession(ctx, user, meta)
}

// OAuthSignin upserts the provider identity and opens a session for it.
func (s *Service) OAuthSignin(
	ctx context.Context,
	profile OAuthProfile,
	meta ClientMeta,
) (*SigninResult, error) {
	user, err := s.users.UpsertOAuth(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("upsert oauth user: %w", err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("oauth signin: %w", core.ErrAccountBlocked)
	}

	return s.startSession(ctx, user, meta)
}

func (s *Service) startSession(
	ctx context.Context,
	user *UserInfo,
	meta ClientMeta,
) (*SigninResult, error) {
	if meta.PreviousToken != "" {
		s.discardSession(ctx, meta.PreviousToken)
	}

	sessionID, err := core.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := s.now()
	session := &Session{
		ID:          sessionID,
		UserID:      user.ID,
		Role:        user.Role,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		UserAgent:   meta.UserAgent,
		IPAddress:   meta.IPAddress,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.config.SessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.jwt.CreateSessionToken(user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		//nolint:errcheck // orphaned session expires on its own
		_ = s.sessions.Destroy(ctx, session)
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	isFirstLogin := user.LoginCount == 0
	s.recordLogin(ctx, user.ID, now)

	return &SigninResult{
		User:         user,
		Token:        token,
		ExpiresAt:    session.ExpiresAt,
		IsFirstLogin: isFirstLogin,
	}, nil
}

// recordLogin bumps the login counters without holding up the response.
func (s *Service) recordLogin(ctx context.Context, userID string, at time.Time) {
	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, 5*time.Second)
		defer cancel()

		if err := s.users.RecordLogin(ctx, userID, at); err != nil {
			s.logger.Warn("record login failed", "user_id", userID, "error", err)
		}
	}()
}

// Signout destroys the session named by token. Unknown, expired or already
// destroyed sessions are not an error.
func (s *Service) Signout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := s.jwt.VerifySessionToken(token)
	if err != nil {
		return nil
	}

	err = s.sessions.Destroy(ctx, &Session{ID: claims.SessionID, UserID: claims.UserID})
	if err != nil {
		return fmt.Errorf("signout: %w", err)
	}

	return nil
}

func (s *Service) discardSession(ctx context.Context, token string) {
	if err := s.Signout(ctx, token); err != nil {
		s.logger.Warn("discard previous session failed", "error", err)
	}
}

// VerifySession resolves a credential to a live session whose owner is
// still active. A blocked or deleted owner's session is destroyed here.
func (s *Service) VerifySession(
	ctx context.Context,
	token string,
) (*middleware.SessionClaims, error) {
	claims, err := s.jwt.VerifySessionToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}

	if session.UserID != claims.UserID || session.IsExpired(s.now()) {
		//nolint:errcheck // rejection stands regardless
		_ = s.sessions.Destroy(ctx, session)
		return nil, fmt.Errorf("verify session: %w", core.ErrTokenInvalid)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // rejection stands regardless
			_ = s.sessions.Destroy(ctx, session)
			return nil, fmt.Errorf("verify session: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("load session owner: %w", err)
	}

	if !user.IsActive {
		if err := s.sessions.Destroy(ctx, session); err != nil {
			s.logger.Error("destroy blocked session failed",
				"user_id", user.ID,
				"error", err,
			)
		}
		return nil, fmt.Errorf("verify session: %w", core.ErrAccountBlocked)
	}

	return &middleware.SessionClaims{
		SessionID:   session.ID,
		UserID:      user.ID,
		Role:        user.Role,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Plan:        user.Plan,
	}, nil
}

// SessionStatus reports whether token names a live session. It never fails.
func (s *Service) SessionStatus(ctx context.Context, token string) SessionStatusResponse {
	if token == "" {
		return SessionStatusResponse{}
	}

	claims, err := s.VerifySession(ctx, token)
	if err != nil {
		return SessionStatusResponse{}
	}

	return SessionStatusResponse{
		Authenticated: true,
		Name:          claims.DisplayName,
		Email:         claims.Email,
		Role:          claims.Role,
	}
}

// ForgotPassword mails a one hour reset link when email and mobile name the
// same account. Callers always report success.
func (s *Service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.users.GetByEmailAndMobile(
		ctx,
		strings.ToLower(strings.TrimSpace(req.Email)),
		req.Mobile,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token, err := core.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.resets.InvalidateForUser(ctx, user.ID); err != nil {
		return err
	}

	if err := s.resets.Create(ctx, &PasswordResetToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: core.HashToken(token),
		ExpiresAt: s.now().Add(ResetTokenTTL),
	}); err != nil {
		return err
	}

	link := strings.TrimRight(s.config.ClientURL, "/") + "/reset-password/" + token
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.DisplayName, link); err != nil {
		s.logger.Error("send password reset failed", "user_id", user.ID, "error", err)
	}

	return nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	token string,
	req ResetPasswordRequest,
) error {
	stored, err := s.resets.FindByHash(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if !stored.IsUsable(s.now()) {
		return ErrInvalidResetToken
	}

	if err := s.resets.MarkUsed(ctx, stored.ID); err != nil {
		if errors.Is(err, core.ErrTokenRevoked) {
			return ErrInvalidResetToken
		}
		return err
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, stored.UserID, passwordHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.sessions.DestroyAllForUser(ctx, stored.UserID); err != nil {
		return fmt.Errorf("end sessions: %w", err)
	}

	return nil
}

// PurgeResetTokens removes reset tokens that can no longer be redeemed.
func (s *Service) PurgeResetTokens(ctx context.Context) (int64, error) {
	return s.resets.DeleteExpired(ctx)
}
