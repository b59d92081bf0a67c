// AngelaMos | 2026
// entity.go

package billing

import (
	"errors"
	"time"
)

var (
	ErrAlreadyPremium   = errors.New("premium plan already active")
	ErrNotPending       = errors.New("payment is no longer pending")
	ErrInvalidSignature = errors.New("webhook signature invalid")
	ErrNotConfigured    = errors.New("payment provider not configured")
	ErrPendingExists    = errors.New("pending payment already exists")
	ErrCheckoutBusy     = errors.New("checkout is still being opened")
	ErrCheckoutComplete = errors.New("checkout already completed")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

const ProviderStripe = "stripe"

// Payment is one premium purchase attempt. Only a pending payment can move,
// and it moves exactly once.
type Payment struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Plan        string     `db:"plan"`
	Amount      int64      `db:"amount"`
	Currency    string     `db:"currency"`
	Provider    string     `db:"provider"`
	ProviderRef *string    `db:"provider_ref"`
	CheckoutURL *string    `db:"checkout_url"`
	Status      Status     `db:"status"`
	ValidFrom   *time.Time `db:"valid_from"`
	ValidUntil  *time.Time `db:"valid_until"`
	VerifiedBy  *string    `db:"verified_by"`
	VerifiedAt  *time.Time `db:"verified_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// AdminPayment is a payment joined with its owner for the review queue.
type AdminPayment struct {
	Payment
	UserEmail string `db:"user_email"`
	UserName  string `db:"user_name"`
}

// CheckoutRequest is what the provider needs to open a hosted checkout.
type CheckoutRequest struct {
	PaymentID   string
	UserID      string
	Email       string
	Amount      int64
	Currency    string
	Description string
	ExpiresAt   time.Time
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified provider notification reduced to what approval needs.
type Event struct {
	ID        string
	Type      string
	SessionID string
	PaymentID string
	Paid      bool
}

const EventCheckoutCompleted = "checkout.session.completed"

// Grant describes one approval. From lists the payment states it may settle.
type Grant struct {
	VerifiedBy *string
	At         time.Time
	Validity   time.Duration
	From       []Status
}

// PremiumWindow returns the span a new purchase covers. A plan still running
// at the time of approval is extended from its current end.
func PremiumWindow(current *time.Time, active bool, at time.Time, validity time.Duration) (time.Time, time.Time) {
	start := at
	if active && current != nil && current.After(at) {
		start = *current
	}
	return start, start.Add(validity)
}
