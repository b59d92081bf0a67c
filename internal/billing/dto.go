// AngelaMos | 2026
// dto.go

package billing

import (
	"time"

	"github.com/carterperez-dev/enhancify/internal/usage"
)

type PaymentResponse struct {
	ID          string     `json:"id"`
	Plan        string     `json:"plan"`
	Amount      int64      `json:"amount"`
	Currency    string     `json:"currency"`
	Provider    string     `json:"provider"`
	Status      Status     `json:"status"`
	CheckoutURL *string    `json:"checkout_url,omitempty"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CheckoutResponse struct {
	PaymentID   string `json:"payment_id"`
	CheckoutURL string `json:"checkout_url"`
}

type StatusResponse struct {
	State          usage.State       `json:"state"`
	Plan           string            `json:"plan"`
	IsActive       bool              `json:"is_active"`
	StartDate      *time.Time        `json:"start_date"`
	EndDate        *time.Time        `json:"end_date"`
	DaysRemaining  int               `json:"days_remaining"`
	DailyLimitUsed bool              `json:"daily_limit_used"`
	UsageCount     int               `json:"usage_count"`
	Payments       []PaymentResponse `json:"payments"`
}

type AdminPaymentResponse struct {
	PaymentResponse
	UserID     string  `json:"user_id"`
	UserEmail  string  `json:"user_email"`
	UserName   string  `json:"user_name"`
	VerifiedBy *string `json:"verified_by,omitempty"`
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		Plan:        p.Plan,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Provider:    p.Provider,
		Status:      p.Status,
		CheckoutURL: p.CheckoutURL,
		ValidFrom:   p.ValidFrom,
		ValidUntil:  p.ValidUntil,
		VerifiedAt:  p.VerifiedAt,
		CreatedAt:   p.CreatedAt,
	}
}

func ToStatusResponse(st *PlanStatus) StatusResponse {
	payments := make([]PaymentResponse, 0, len(st.Payments))
	for i := range st.Payments {
		payments = append(payments, ToPaymentResponse(&st.Payments[i]))
	}

	return StatusResponse{
		State:          st.State,
		Plan:           st.Plan,
		IsActive:       st.IsActive,
		StartDate:      st.StartDate,
		EndDate:        st.EndDate,
		DaysRemaining:  st.DaysRemaining,
		DailyLimitUsed: st.DailyLimitUsed,
		UsageCount:     st.UsageCount,
		Payments:       payments,
	}
}

func ToAdminPaymentResponseList(items []AdminPayment) []AdminPaymentResponse {
	out := make([]AdminPaymentResponse, 0, len(items))
	for i := range items {
		out = append(out, AdminPaymentResponse{
			PaymentResponse: ToPaymentResponse(&items[i].Payment),
			UserID:          items[i].UserID,
			UserEmail:       items[i].UserEmail,
			UserName:        items[i].UserName,
			VerifiedBy:      items[i].VerifiedBy,
		})
	}
	return out
}
