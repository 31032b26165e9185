package models

type SignupRequest struct {
	Name                 string `json:"name" form:"name"`
	Email                string `json:"email" form:"email"`
	Password             string `json:"password" form:"password"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

func (r SignupRequest) ToUser() *User {
	return &User{
		Name:                 r.Name,
		Email:                r.Email,
		Password:             r.Password,
		PasswordConfirmation: r.PasswordConfirmation,
	}
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type AuthResponse struct {
	Token         string `json:"token"`
	RememberToken string `json:"remember_token"`
	User          User   `json:"user"`
}

type CreateEssayRequest struct {
	Content string `json:"content" form:"content" validate:"required,max=5000"`
}

type ChangePasswordRequest struct {
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}

type FeedParams struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// Normalize clamps paging values into their accepted range.
func (p *FeedParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultFeedLimit
	}
	if p.Limit > MaxFeedLimit {
		p.Limit = MaxFeedLimit
	}
}
