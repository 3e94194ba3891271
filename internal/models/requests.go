package models

// LoginRequest is the platform admin login body.
type LoginRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	CaptchaToken string `json:"captcha_token,omitempty"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	TenantID string `json:"tenant_id"`
	StoreID  string `json:"store_id"`
	Email    string `json:"email"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirm struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type OTPSendRequest struct {
	Phone string `json:"phone" binding:"required,e164"`
}

type OTPVerifyRequest struct {
	Phone string `json:"phone" binding:"required,e164"`
	Code  string `json:"code" binding:"required,min=4,max=8"`
}
