package client

import (
	"context"

	"github.com/dmitrijs2005/agentportal/internal/client/models"
)

const (
	SignupPath    = "/api/users/agent/signup/"
	VerifyOTPPath = "/api/users/agent/verify-otp/"
	LoginPath     = "/api/users/agent/login/"
	ResendOTPPath = "/api/users/agent/resend-otp/"
)

type Client interface {
	Signup(ctx context.Context, email, password string) (*SignupResponse, error)
	VerifyOTP(ctx context.Context, email, code string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	ResendOTP(ctx context.Context, email string, purpose models.Purpose) (*MessageResponse, error)
}

// SignupResponse confirms that an OTP was sent. Development backends also
// echo the code in OTP.
type SignupResponse struct {
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// AuthResponse is returned by login and OTP verification.
type AuthResponse struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    *models.Profile `json:"user,omitempty"`
}

func (r *AuthResponse) Credentials() models.Credentials {
	return models.Credentials{AccessToken: r.Access, RefreshToken: r.Refresh, User: r.User}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type resendOTPRequest struct {
	Email   string         `json:"email"`
	Purpose models.Purpose `json:"purpose"`
}
