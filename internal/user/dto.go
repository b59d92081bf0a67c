// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,min=1,max=100"`
	Mobile    *string `json:"mobile,omitempty"     validate:"omitempty,numeric,min=11,max=15"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

type SetStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type SubscriptionResponse struct {
	Plan      string     `json:"plan"`
	IsActive  bool       `json:"is_active"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

type UserResponse struct {
	ID             string               `json:"id"`
	FirstName      string               `json:"first_name"`
	LastName       string               `json:"last_name"`
	Mobile         string               `json:"mobile"`
	Email          string               `json:"email"`
	Username       string               `json:"username,omitempty"`
	ProfilePicture string               `json:"profile_picture,omitempty"`
	Role           string               `json:"role"`
	IsActive       bool                 `json:"is_active"`
	LoginCount     int                  `json:"login_count"`
	LastLogin      *time.Time           `json:"last_login,omitempty"`
	Subscription   SubscriptionResponse `json:"subscription"`
	CreatedAt      time.Time            `json:"created_at"`
}

type AdminUserResponse struct {
	UserResponse
	TotalAnalyses int `json:"total_analyses"`
}

// ListedUser is a row of the admin listing, joined with its result count.
type ListedUser struct {
	User
	TotalAnalyses int `db:"total_analyses"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Status   string `json:"status"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	if p.Status != StatusActive && p.Status != StatusBlocked {
		p.Status = ""
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Mobile:         u.Mobile,
		Email:          u.Email,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Role:           u.Role,
		IsActive:       u.IsActive,
		LoginCount:     u.LoginCount,
		LastLogin:      u.LastLogin,
		Subscription: SubscriptionResponse{
			Plan:      u.Plan,
			IsActive:  u.SubscriptionActive,
			StartDate: u.SubscriptionStart,
			EndDate:   u.SubscriptionEnd,
		},
		CreatedAt: u.CreatedAt,
	}
}

func ToAdminUserResponseList(users []ListedUser) []AdminUserResponse {
	responses := make([]AdminUserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, AdminUserResponse{
			UserResponse:  ToUserResponse(&users[i].User),
			TotalAnalyses: users[i].TotalAnalyses,
		})
	}
	return responses
}
