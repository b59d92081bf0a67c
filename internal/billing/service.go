// AngelaMos | 2026
// service.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/enhancify/internal/config"
	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/usage"
	"github.com/carterperez-dev/enhancify/internal/user"
)

const (
	recentPayments = 5
	expiryBatch    = 100
)

type Provider interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ExpireCheckout(ctx context.Context, sessionID string) error
	ParseEvent(payload []byte, signature string) (*Event, error)
}

type SubscriptionSource interface {
	GetSubscription(ctx context.Context, userID string) (*user.Subscription, error)
}

type StatusReporter interface {
	Status(sub user.Subscription) usage.Status
}

type Service struct {
	repo     Repository
	subs     SubscriptionSource
	reporter StatusReporter
	provider Provider
	cfg      config.BillingConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	subs SubscriptionSource,
	reporter StatusReporter,
	provider Provider,
	cfg config.BillingConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		subs:     subs,
		reporter: reporter,
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Checkout records a pending payment and opens a provider checkout for it.
// A user whose premium plan is still running cannot buy another, and a user
// with an open checkout gets that one back.
func (s *Service) Checkout(ctx context.Context, userID, email string) (*Payment, error) {
	sub, err := s.subs.GetSubscription(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}
	if sub.IsPremiumActive(s.now()) {
		return nil, ErrAlreadyPremium
	}

	open, err := s.reusePending(ctx, userID)
	if err != nil || open != nil {
		return open, err
	}

	p := &Payment{
		ID:       uuid.New().String(),
		UserID:   userID,
		Plan:     user.PlanPremium,
		Amount:   s.cfg.Amount,
		Currency: s.cfg.Currency,
		Provider: ProviderStripe,
		Status:   StatusPending,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrPendingExists) {
			if open, err := s.reusePending(ctx, userID); err != nil || open != nil {
				return open, err
			}
			return nil, ErrCheckoutBusy
		}
		return nil, err
	}

	sess, err := s.provider.CreateCheckout(ctx, CheckoutRequest{
		PaymentID:   p.ID,
		UserID:      userID,
		Email:       email,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: s.cfg.Description,
		ExpiresAt:   s.now().Add(s.cfg.PendingTTL),
	})
	if err != nil {
		if _, terr := s.repo.Transition(context.WithoutCancel(ctx), p.ID, StatusPending, StatusCancelled); terr != nil {
			s.logger.Error("cancel failed checkout", "payment_id", p.ID, "error", terr)
		}
		return nil, err
	}

	if err := s.repo.SetCheckout(ctx, p.ID, *sess); err != nil {
		return nil, err
	}
	p.ProviderRef = &sess.ID
	p.CheckoutURL = &sess.URL

	s.logger.Info("checkout opened",
		"user_id", userID,
		"payment_id", p.ID,
		"session_id", sess.ID,
	)

	return p, nil
}

// reusePending returns the user's open checkout, or nil when a new one may
// be opened. A pending payment past its lifetime is closed first.
func (s *Service) reusePending(ctx context.Context, userID string) (*Payment, error) {
	p, err := s.repo.FindPending(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if p.CreatedAt.Before(s.now().Add(-s.cfg.PendingTTL)) {
		if err := s.closePayment(ctx, p, StatusExpired); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if p.CheckoutURL == nil {
		return nil, ErrCheckoutBusy
	}

	s.logger.Info("checkout reused", "user_id", userID, "payment_id", p.ID)
	return p, nil
}

// closePayment expires the provider checkout and then moves the payment out of
// pending. If the checkout was already paid the payment stays pending so the
// webhook can settle it.
func (s *Service) closePayment(ctx context.Context, p *Payment, to Status) error {
	if p.ProviderRef != nil && *p.ProviderRef != "" {
		if err := s.provider.ExpireCheckout(ctx, *p.ProviderRef); err != nil {
			return fmt.Errorf("close payment %s: %w", p.ID, err)
		}
	}

	moved, err := s.repo.Transition(ctx, p.ID, StatusPending, to)
	if err != nil {
		return err
	}
	if !moved {
		return ErrNotPending
	}
	p.Status = to
	return nil
}

type PlanStatus struct {
	usage.Status
	Payments []Payment
}

func (s *Service) Status(ctx context.Context, userID string) (*PlanStatus, error) {
	sub, err := s.subs.GetSubscription(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("plan status: %w", err)
	}

	payments, err := s.repo.ListByUser(ctx, userID, recentPayments)
	if err != nil {
		return nil, err
	}

	return &PlanStatus{
		Status:   s.reporter.Status(*sub),
		Payments: payments,
	}, nil
}

// Cancel abandons the caller's own pending payment.
func (s *Service) Cancel(ctx context.Context, userID, paymentID string) (*Payment, error) {
	if _, err := uuid.Parse(paymentID); err != nil {
		return nil, fmt.Errorf("cancel payment: %w", core.ErrNotFound)
	}

	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("cancel payment: %w", core.ErrNotFound)
	}

	if p.Status != StatusPending {
		return nil, ErrNotPending
	}
	if err := s.closePayment(ctx, p, StatusCancelled); err != nil {
		return nil, err
	}

	s.logger.Info("payment cancelled", "user_id", userID, "payment_id", p.ID)
	return p, nil
}

// HandleWebhook applies a verified provider event. Events that do not
// complete a paid checkout, and payments already approved, are acknowledged
// without change so the provider stops retrying. A paid checkout whose
// payment was closed on our side still grants premium.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.provider.ParseEvent(payload, signature)
	if err != nil {
		return err
	}

	if ev.Type != EventCheckoutCompleted || !ev.Paid {
		s.logger.Debug("webhook ignored", "event_id", ev.ID, "type", ev.Type, "paid", ev.Paid)
		return nil
	}
	if ev.PaymentID == "" {
		s.logger.Error("paid checkout without payment reference",
			"event_id", ev.ID,
			"session_id", ev.SessionID,
		)
		return nil
	}

	before, err := s.repo.GetByID(ctx, ev.PaymentID)
	if errors.Is(err, core.ErrNotFound) {
		s.logger.Error("paid checkout for unknown payment",
			"event_id", ev.ID,
			"payment_id", ev.PaymentID,
			"session_id", ev.SessionID,
		)
		return nil
	}
	if err != nil {
		return err
	}

	p, err := s.approve(ctx, ev.PaymentID, nil,
		StatusPending, StatusCancelled, StatusExpired)
	switch {
	case errors.Is(err, ErrNotPending):
		s.logger.Info("webhook for settled payment",
			"event_id", ev.ID,
			"payment_id", ev.PaymentID,
		)
		return nil
	case err != nil:
		return err
	}

	if before.Status != StatusPending {
		s.logger.Warn("paid checkout settled a closed payment",
			"event_id", ev.ID,
			"payment_id", p.ID,
			"previous_status", before.Status,
		)
	}
	s.logger.Info("premium granted",
		"user_id", p.UserID,
		"payment_id", p.ID,
		"event_id", ev.ID,
		"valid_until", p.ValidUntil,
	)
	return nil
}

// Approve is the manual path for an admin confirming a payment.
func (s *Service) Approve(ctx context.Context, adminID, paymentID string) (*Payment, error) {
	if _, err := uuid.Parse(paymentID); err != nil {
		return nil, fmt.Errorf("approve payment: %w", core.ErrNotFound)
	}

	p, err := s.approve(ctx, paymentID, &adminID, StatusPending)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment approved by admin",
		"admin_id", adminID,
		"payment_id", p.ID,
		"user_id", p.UserID,
	)
	return p, nil
}

func (s *Service) approve(ctx context.Context, paymentID string, verifiedBy *string, from ...Status) (*Payment, error) {
	return s.repo.Approve(ctx, paymentID, Grant{
		VerifiedBy: verifiedBy,
		At:         s.now().UTC(),
		Validity:   s.cfg.Validity,
		From:       from,
	})
}

func (s *Service) List(ctx context.Context, status Status, page, pageSize int) ([]AdminPayment, int, error) {
	return s.repo.List(ctx, status, pageSize, (page-1)*pageSize)
}

// ExpirePending closes checkouts that were never completed. Each provider
// session is expired before its payment leaves pending. Payments that could
// not be closed are retried on the next run.
func (s *Service) ExpirePending(ctx context.Context) (int64, error) {
	stale, err := s.repo.ListPendingBefore(ctx, s.now().Add(-s.cfg.PendingTTL), expiryBatch)
	if err != nil {
		return 0, err
	}

	var n int64
	for i := range stale {
		p := &stale[i]
		err := s.closePayment(ctx, p, StatusExpired)
		switch {
		case err == nil:
			n++
		case errors.Is(err, ErrCheckoutComplete):
			s.logger.Warn("stale payment was paid, awaiting webhook", "payment_id", p.ID)
		case errors.Is(err, ErrNotPending):
			// settled while we were closing it
		default:
			s.logger.Error("expire payment", "payment_id", p.ID, "error", err)
		}
	}

	if n > 0 {
		s.logger.Info("expired pending payments", "count", n)
	}
	return n, nil
}
