package models

// Auth API types
type SignupRequest struct {
	Email  string `json:"email"`
	Passwd string `json:"passwd"`
}

type VerifyMailRequest struct {
	Verify string `json:"verify"`
}

type LoginRequest struct {
	Uname  string `json:"uname"`
	Passwd string `json:"passwd"`
}

type LogoutRequest struct {
	Auth string `json:"auth"`
}

type ChangePassRequest struct {
	Auth    string `json:"auth"`
	Uname   string `json:"uname"`
	Oldpass string `json:"oldpass"`
	Newpass string `json:"newpass"`
}

type TwoFactorRequest struct {
	Uname  string `json:"uname"`
	Passwd string `json:"passwd"`
	Phone  string `json:"phone,omitempty"`
}

type EnterCodeRequest struct {
	Uname string `json:"uname"`
	Otp   string `json:"otp"`
}

// MessageIDResponse carries the delivery provider's message identifier.
type MessageIDResponse struct {
	ID string `json:"id"`
}

type AuthResponse struct {
	Auth string `json:"auth"`
}

type DoneResponse struct {
	Done int `json:"done"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
