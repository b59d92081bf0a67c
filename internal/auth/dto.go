// AngelaMos | 2026
// dto.go

package auth

type SignupRequest struct {
	FirstName       string `json:"first_name"       validate:"required,min=1,max=100"`
	LastName        string `json:"last_name"        validate:"required,min=1,max=100"`
	Mobile          string `json:"mobile"           validate:"required,numeric,min=11,max=15"`
	Email           string `json:"email"            validate:"required,email,max=255"`
	Password        string `json:"password"         validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type SigninRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type ForgotPasswordRequest struct {
	Email  string `json:"email"  validate:"required,email,max=255"`
	Mobile string `json:"mobile" validate:"required,numeric,min=11,max=15"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password"         validate:"required,min=8,max=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Plan        string `json:"plan"`
}

type SigninResponse struct {
	User         UserResponse `json:"user"`
	IsFirstLogin bool         `json:"is_first_login"`
	Token        string       `json:"token"`
	ExpiresIn    int          `json:"expires_in"`
}

// SessionStatusResponse answers the session check; it never fails with 401.
type SessionStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Role          string `json:"role,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Plan:        u.Plan,
	}
}
