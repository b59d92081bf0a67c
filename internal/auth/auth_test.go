// AngelaMos | 2026
// auth_test.go

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/carterperez-dev/enhancify/internal/config"
	"github.com/carterperez-dev/enhancify/internal/core"
)

type stubUsers struct {
	mu     sync.Mutex
	users  map[string]*UserInfo
	mobile map[string]string
	logins int
}

func newStubUsers() *stubUsers {
	return &stubUsers{users: map[string]*UserInfo{}, mobile: map[string]string{}}
}

func (s *stubUsers) add(t *testing.T, id, email, password string, active bool) *UserInfo {
	t.Helper()
	hash, err := core.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &UserInfo{
		ID:           id,
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: &hash,
		Role:         "user",
		Plan:         "freemium",
		IsActive:     active,
	}
	s.mu.Lock()
	s.users[id] = u
	s.mobile[id] = "09171234567"
	s.mu.Unlock()
	return u
}

func (s *stubUsers) setActive(id string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].IsActive = active
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *stubUsers) GetByEmailAndMobile(_ context.Context, email, mobile string) (*UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email && s.mobile[id] == mobile {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *stubUsers) Create(_ context.Context, nu NewUser) (*UserInfo, error) {
	return nil, errors.New("not used")
}

func (s *stubUsers) UpsertOAuth(_ context.Context, _ OAuthProfile) (*UserInfo, error) {
	return nil, errors.New("not used")
}

func (s *stubUsers) UpdatePassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].PasswordHash = &hash
	return nil
}

func (s *stubUsers) RecordLogin(_ context.Context, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins++
	return nil
}

type memSessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]*Session{}}
}

func (m *memSessions) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, core.ErrTokenRevoked
}

func (m *memSessions) Destroy(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.ID)
	return nil
}

func (m *memSessions) DestroyAllForUser(ctx context.Context, userID string) error {
	return m.DestroyOthers(ctx, userID, "")
}

func (m *memSessions) DestroyOthers(_ context.Context, userID, keepID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UserID == userID && id != keepID {
			delete(m.sessions, id)
		}
	}
	return nil
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type memResets struct {
	mu     sync.Mutex
	tokens map[string]*PasswordResetToken
}

func (m *memResets) Create(_ context.Context, t *PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tokens[t.TokenHash] = &cp
	return nil
}

func (m *memResets) FindByHash(_ context.Context, hash string) (*PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[hash]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (m *memResets) MarkUsed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tokens {
		if t.ID == id {
			if t.UsedAt != nil {
				return core.ErrTokenRevoked
			}
			now := time.Now()
			t.UsedAt = &now
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *memResets) InvalidateForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.tokens {
		if t.UserID == userID && t.UsedAt == nil {
			t.UsedAt = &now
		}
	}
	return nil
}

func (m *memResets) DeleteExpired(_ context.Context) (int64, error) { return 0, nil }

type stubMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *stubMailer) SendPasswordReset(_ context.Context, _, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
	return nil
}

type fixture struct {
	svc      *Service
	users    *stubUsers
	sessions *memSessions
	mailer   *stubMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	priv := filepath.Join(dir, "private.pem")
	pub := filepath.Join(dir, "public.pem")
	if err := GenerateKeyPair(priv, pub); err != nil {
		t.Fatalf("generate keys: %v", err)
	}

	jwtManager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath: priv,
		PublicKeyPath:  pub,
		Issuer:         "enhancify-test",
		Audience:       "enhancify-test",
	})
	if err != nil {
		t.Fatalf("jwt manager: %v", err)
	}

	f := &fixture{
		users:    newStubUsers(),
		sessions: newMemSessions(),
		mailer:   &stubMailer{},
	}
	f.svc = NewService(
		jwtManager,
		f.sessions,
		&memResets{tokens: map[string]*PasswordResetToken{}},
		f.users,
		f.mailer,
		ServiceConfig{SessionTTL: time.Hour, ClientURL: "http://client.test/"},
		nil,
	)
	return f
}

func TestSigninRegeneratesSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.users.add(t, "u1", "ana@example.com", "password123", true)
	ctx := context.Background()
	req := SigninRequest{Email: "ana@example.com", Password: "password123"}

	first, err := f.svc.Signin(ctx, req, ClientMeta{})
	if err != nil {
		t.Fatalf("first signin: %v", err)
	}
	if !first.IsFirstLogin {
		t.Fatalf("first signin should report is_first_login")
	}

	second, err := f.svc.Signin(ctx, req, ClientMeta{PreviousToken: first.Token})
	if err != nil {
		t.Fatalf("second signin: %v", err)
	}

	if _, err := f.svc.VerifySession(ctx, first.Token); err == nil {
		t.Fatalf("previous session must not survive a new sign in")
	}
	claims, err := f.svc.VerifySession(ctx, second.Token)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "ana@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestSigninRejectsBadPasswordAndBlockedAccount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.users.add(t, "u1", "ana@example.com", "password123", true)
	f.users.add(t, "u2", "ben@example.com", "password123", false)
	ctx := context.Background()

	_, err := f.svc.Signin(ctx, SigninRequest{Email: "ana@example.com", Password: "wrong-pass"}, ClientMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v", err)
	}

	_, err = f.svc.Signin(ctx, SigninRequest{Email: "nobody@example.com", Password: "password123"}, ClientMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}

	_, err = f.svc.Signin(ctx, SigninRequest{Email: "ben@example.com", Password: "password123"}, ClientMeta{})
	if !errors.Is(err, core.ErrAccountBlocked) {
		t.Fatalf("blocked err = %v", err)
	}
	if f.sessions.count() != 0 {
		t.Fatalf("no session may be created for a blocked account")
	}
}

func TestVerifySessionDestroysBlockedUsersSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.users.add(t, "u1", "ana@example.com", "password123", true)
	ctx := context.Background()

	res, err := f.svc.Signin(ctx, SigninRequest{Email: "ana@example.com", Password: "password123"}, ClientMeta{})
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	f.users.setActive("u1", false)

	_, err = f.svc.VerifySession(ctx, res.Token)
	if !errors.Is(err, core.ErrAccountBlocked) {
		t.Fatalf("err = %v, want account blocked", err)
	}
	if f.sessions.count() != 0 {
		t.Fatalf("blocked user's session must be destroyed")
	}

	f.users.setActive("u1", true)
	if _, err := f.svc.VerifySession(ctx, res.Token); err == nil {
		t.Fatalf("destroyed session must stay dead after unblocking")
	}
}

func TestSignoutIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.users.add(t, "u1", "ana@example.com", "password123", true)
	ctx := context.Background()

	res, err := f.svc.Signin(ctx, SigninRequest{Email: "ana@example.com", Password: "password123"}, ClientMeta{})
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := f.svc.Signout(ctx, res.Token); err != nil {
			t.Fatalf("signout %d: %v", i, err)
		}
	}
	if err := f.svc.Signout(ctx, "not-a-token"); err != nil {
		t.Fatalf("garbage token signout: %v", err)
	}
	if status := f.svc.SessionStatus(ctx, res.Token); status.Authenticated {
		t.Fatalf("session should be gone")
	}
}

func TestForgotAndResetPassword(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.users.add(t, "u1", "ana@example.com", "password123", true)
	ctx := context.Background()

	err := f.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "ana@example.com", Mobile: "00000000000"})
	if err != nil {
		t.Fatalf("mismatched pair should succeed silently: %v", err)
	}
	if len(f.mailer.links) != 0 {
		t.Fatalf("no mail for a mismatched pair")
	}

	err = f.svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "ANA@example.com", Mobile: "09171234567"})
	if err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if len(f.mailer.links) != 1 {
		t.Fatalf("links = %v", f.mailer.links)
	}

	link := f.mailer.links[0]
	const prefix = "http://client.test/reset-password/"
	if !strings.HasPrefix(link, prefix) {
		t.Fatalf("link = %q", link)
	}
	token := strings.TrimPrefix(link, prefix)

	req := ResetPasswordRequest{Password: "new-password-1", ConfirmPassword: "new-password-1"}
	if err := f.svc.ResetPassword(ctx, token, req); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := f.svc.ResetPassword(ctx, token, req); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("second use err = %v", err)
	}

	if _, err := f.svc.Signin(ctx, SigninRequest{Email: "ana@example.com", Password: "new-password-1"}, ClientMeta{}); err != nil {
		t.Fatalf("signin with new password: %v", err)
	}
}
