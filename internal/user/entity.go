// AngelaMos | 2026
// entity.go

package user

import (
	"strings"
	"time"
)

type User struct {
	ID             string  `db:"id"`
	FirstName      string  `db:"first_name"`
	LastName       string  `db:"last_name"`
	Mobile         string  `db:"mobile"`
	Email          string  `db:"email"`
	Username       string  `db:"username"`
	PasswordHash   *string `db:"password_hash"`
	GoogleID       *string `db:"google_id"`
	FacebookID     *string `db:"facebook_id"`
	ProfilePicture string  `db:"profile_picture"`
	Role           string  `db:"role"`
	IsActive       bool    `db:"is_active"`

	LoginCount int        `db:"login_count"`
	FirstLogin bool       `db:"first_login"`
	LastLogin  *time.Time `db:"last_login"`

	Plan               string     `db:"plan"`
	SubscriptionActive bool       `db:"subscription_active"`
	SubscriptionStart  *time.Time `db:"subscription_start"`
	SubscriptionEnd    *time.Time `db:"subscription_end"`
	LastUsedDate       *time.Time `db:"last_used_date"`
	UsageCount         int        `db:"usage_count"`
	TransactionID      *string    `db:"transaction_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName prefers the legal name and falls back to the OAuth username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Subscription is the plan state the usage gate reasons about.
type Subscription struct {
	Plan         string
	IsActive     bool
	StartDate    *time.Time
	EndDate      *time.Time
	LastUsedDate *time.Time
	UsageCount   int
}

func (u *User) Subscription() Subscription {
	return Subscription{
		Plan:         u.Plan,
		IsActive:     u.SubscriptionActive,
		StartDate:    u.SubscriptionStart,
		EndDate:      u.SubscriptionEnd,
		LastUsedDate: u.LastUsedDate,
		UsageCount:   u.UsageCount,
	}
}

// IsPremiumActive reports an active premium plan that has not passed its
// end date at now.
func (s Subscription) IsPremiumActive(now time.Time) bool {
	if !s.IsActive || s.Plan != PlanPremium {
		return false
	}
	return s.EndDate == nil || !now.After(*s.EndDate)
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PlanFreemium = "freemium"
	PlanPremium  = "premium"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)
