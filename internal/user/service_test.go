// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carterperez-dev/enhancify/internal/auth"
	"github.com/carterperez-dev/enhancify/internal/core"
)

type stubRepo struct {
	Repository

	users   map[string]*User
	uploads map[string][]string
	linked  map[string]string
	deleted []string
}

func newStubRepo(users ...*User) *stubRepo {
	r := &stubRepo{
		users:   map[string]*User{},
		uploads: map[string][]string{},
		linked:  map[string]string{},
	}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *stubRepo) Create(_ context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return core.ErrDuplicateKey
		}
	}
	u.IsActive = true
	r.users[u.ID] = u
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, core.ErrNotFound
}

func (r *stubRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *stubRepo) GetByProviderID(_ context.Context, provider, id string) (*User, error) {
	for _, u := range r.users {
		if provider == ProviderGoogle && u.GoogleID != nil && *u.GoogleID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *stubRepo) LinkProvider(_ context.Context, id, provider, providerID string) error {
	r.linked[id] = provider + ":" + providerID
	return nil
}

func (r *stubRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.users[id].PasswordHash = &hash
	return nil
}

func (r *stubRepo) SetActive(_ context.Context, id string, active bool) error {
	r.users[id].IsActive = active
	return nil
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubRepo) ListUploadPaths(_ context.Context, id string) ([]string, error) {
	return r.uploads[id], nil
}

type stubSessions struct {
	destroyedAll []string
	kept         string
}

func (s *stubSessions) DestroyAllForUser(_ context.Context, userID string) error {
	s.destroyedAll = append(s.destroyedAll, userID)
	return nil
}

func (s *stubSessions) DestroyOthers(_ context.Context, _ string, keepID string) error {
	s.kept = keepID
	return nil
}

type stubFiles struct {
	removed []string
}

func (f *stubFiles) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func newTestUser(id, email, role string) *User {
	return &User{
		ID:       id,
		Email:    email,
		Role:     role,
		Plan:     PlanFreemium,
		IsActive: true,
	}
}

func TestSetActiveBlocksAndEndsSessions(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(newTestUser("u1", "a@example.com", RoleUser))
	sessions := &stubSessions{}
	svc := NewService(repo, sessions, &stubFiles{}, nil)

	user, err := svc.SetActive(context.Background(), "u1", false)
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	if user.IsActive || repo.users["u1"].IsActive {
		t.Fatalf("user should be blocked")
	}
	if len(sessions.destroyedAll) != 1 || sessions.destroyedAll[0] != "u1" {
		t.Fatalf("sessions not destroyed: %v", sessions.destroyedAll)
	}

	if _, err := svc.SetActive(context.Background(), "u1", true); err != nil {
		t.Fatalf("unblock: %v", err)
	}
	if len(sessions.destroyedAll) != 1 {
		t.Fatalf("unblocking must not touch sessions")
	}
}

func TestAdminsCannotBeBlockedOrDeleted(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(newTestUser("a1", "root@example.com", RoleAdmin))
	svc := NewService(repo, &stubSessions{}, &stubFiles{}, nil)

	if _, err := svc.SetActive(context.Background(), "a1", false); !errors.Is(err, ErrAdminProtected) {
		t.Fatalf("block admin err = %v", err)
	}
	if err := svc.AdminDelete(context.Background(), "a1"); !errors.Is(err, ErrAdminProtected) {
		t.Fatalf("delete admin err = %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("admin must survive")
	}
}

func TestAdminDeleteRemovesStoredUploads(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(newTestUser("u1", "a@example.com", RoleUser))
	repo.uploads["u1"] = []string{"/data/u1_1.pdf", "/data/u1_2.docx"}
	files := &stubFiles{}
	sessions := &stubSessions{}
	svc := NewService(repo, sessions, files, nil)

	if err := svc.AdminDelete(context.Background(), "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("user row not deleted")
	}
	if len(files.removed) != 2 {
		t.Fatalf("removed = %v", files.removed)
	}
	if len(sessions.destroyedAll) != 1 {
		t.Fatalf("deleted user's sessions must end")
	}
}

func TestChangePasswordKeepsCurrentSession(t *testing.T) {
	t.Parallel()

	hash, err := core.HashPassword("old-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := newTestUser("u1", "a@example.com", RoleUser)
	u.PasswordHash = &hash

	repo := newStubRepo(u)
	sessions := &stubSessions{}
	svc := NewService(repo, sessions, &stubFiles{}, nil)
	ctx := context.Background()

	err = svc.ChangePassword(ctx, "u1", "sess-1", ChangePasswordRequest{
		CurrentPassword: "not-it",
		NewPassword:     "new-password",
	})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("wrong current password err = %v", err)
	}

	err = svc.ChangePassword(ctx, "u1", "sess-1", ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	})
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if sessions.kept != "sess-1" {
		t.Fatalf("current session should be kept, got %q", sessions.kept)
	}

	ok, err := core.VerifyPassword("new-password", *repo.users["u1"].PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password not stored")
	}
}

func TestUpsertOAuthLinksExistingEmail(t *testing.T) {
	t.Parallel()

	repo := newStubRepo(newTestUser("u1", "a@example.com", RoleUser))
	svc := NewService(repo, &stubSessions{}, &stubFiles{}, nil)

	info, err := svc.UpsertOAuth(context.Background(), auth.OAuthProfile{
		Provider:   ProviderGoogle,
		ProviderID: "g-123",
		Email:      "a@example.com",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if info.ID != "u1" {
		t.Fatalf("should reuse the existing account, got %q", info.ID)
	}
	if repo.linked["u1"] != "google:g-123" {
		t.Fatalf("provider not linked: %v", repo.linked)
	}

	fresh, err := svc.UpsertOAuth(context.Background(), auth.OAuthProfile{
		Provider:   ProviderGoogle,
		ProviderID: "g-999",
		Email:      "new@example.com",
		Username:   "New Person",
	})
	if err != nil {
		t.Fatalf("create via oauth: %v", err)
	}
	if fresh.ID == "u1" || fresh.PasswordHash != nil || fresh.Plan != PlanFreemium {
		t.Fatalf("unexpected oauth user %+v", fresh)
	}
}

func TestSubscriptionIsPremiumActive(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"freemium", Subscription{Plan: PlanFreemium, IsActive: true}, false},
		{"inactive premium", Subscription{Plan: PlanPremium, EndDate: &future}, false},
		{"expired premium", Subscription{Plan: PlanPremium, IsActive: true, EndDate: &past}, false},
		{"live premium", Subscription{Plan: PlanPremium, IsActive: true, EndDate: &future}, true},
	}

	for _, tc := range cases {
		if got := tc.sub.IsPremiumActive(now); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
