package client

import (
	"context"

	"github.com/dmitrijs2005/agentportal/internal/client/models"
)

func (c *HTTPClient) Signup(ctx context.Context, email, password string) (*SignupResponse, error) {
	var resp SignupResponse
	if err := c.post(ctx, SignupPath, credentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, code string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, VerifyOTPPath, verifyOTPRequest{Email: email, OTP: code}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, LoginPath, credentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResendOTP asks the backend to issue a fresh code. An empty purpose is sent
// as "signup".
func (c *HTTPClient) ResendOTP(ctx context.Context, email string, purpose models.Purpose) (*MessageResponse, error) {
	if purpose == "" {
		purpose = models.PurposeSignup
	}
	var resp MessageResponse
	if err := c.post(ctx, ResendOTPPath, resendOTPRequest{Email: email, Purpose: purpose}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
