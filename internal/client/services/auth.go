// Package services contains the application services of the agent client.
// This file defines the authentication service: signup, OTP verification and
// resend, login, logout, and the session data shown on the dashboard.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agentportal/internal/client/client"
	"github.com/dmitrijs2005/agentportal/internal/client/forms"
	"github.com/dmitrijs2005/agentportal/internal/client/models"
	"github.com/dmitrijs2005/agentportal/internal/failure"
	"github.com/dmitrijs2005/agentportal/internal/logging"
)

const (
	MsgSignupFailed       = "Signup failed. Please try again."
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidOTP         = "Invalid OTP. Please try again."
)

// ErrNotAuthenticated is returned by Session when no access token is stored.
var ErrNotAuthenticated = errors.New("not authenticated")

// CredentialStore persists the session issued by the backend.
type CredentialStore interface {
	Save(ctx context.Context, c models.Credentials) error
	IsAuthenticated(ctx context.Context) bool
	Profile(ctx context.Context) (*models.Profile, error)
	TokenExpiry(ctx context.Context) (time.Time, bool, error)
	Clear(ctx context.Context) error
}

// Session is what the dashboard shows for the signed-in agent. Profile may be
// nil when the backend did not return one; Expires is zero when the access
// token carries no expiry claim.
type Session struct {
	Profile *models.Profile
	Expires time.Time
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Signup: validate the form and register the email; an OTP challenge for
//     the returned email must follow.
//   - VerifyOTP: exchange a code for a session and persist it.
//   - ResendOTP: ask the backend for a fresh code.
//   - Login: validate the form, authenticate and persist the session.
//   - Logout: drop the persisted session.
//   - Session: read the persisted session for display.
//
// Every user-facing failure is a *failure.Error.
type AuthService interface {
	Signup(ctx context.Context, in forms.SignupInput) (string, error)
	VerifyOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string, purpose models.Purpose) error
	Login(ctx context.Context, in forms.LoginInput) error
	Logout(ctx context.Context) error
	IsAuthenticated(ctx context.Context) bool
	Session(ctx context.Context) (*Session, error)
}

type authService struct {
	client client.Client
	store  CredentialStore
	log    logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// credential store.
func NewAuthService(c client.Client, store CredentialStore, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{client: c, store: store, log: log}
}

// Signup validates the form and registers the agent. It returns the
// normalized email the OTP was sent to. Backend rejections keep their
// message; network failures use a generic one.
func (a *authService) Signup(ctx context.Context, in forms.SignupInput) (string, error) {
	in.Normalize()
	if err := forms.ValidateSignup(in); err != nil {
		return "", err
	}

	resp, err := a.client.Signup(ctx, in.Email, in.Password)
	if err != nil {
		a.log.Warn(ctx, "signup rejected", "email", in.Email, "error", err)
		msg := MsgSignupFailed
		if failure.Is(err, failure.KindRemote) {
			msg = failure.MessageOf(err, MsgSignupFailed)
		}
		return "", surface(err, msg)
	}

	a.log.Info(ctx, "signup accepted, otp sent", "email", in.Email, "message", resp.Message)
	return in.Email, nil
}

// VerifyOTP exchanges code for a session. A result that arrives after ctx
// was cancelled is not persisted.
func (a *authService) VerifyOTP(ctx context.Context, email, code string) error {
	resp, err := a.client.VerifyOTP(ctx, email, code)
	if err != nil {
		a.log.Warn(ctx, "otp verification rejected", "email", email, "error", err)
		return surface(err, MsgInvalidOTP)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := a.store.Save(ctx, resp.Credentials()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	a.log.Info(ctx, "otp verified", "email", email)
	return nil
}

func (a *authService) ResendOTP(ctx context.Context, email string, purpose models.Purpose) error {
	if _, err := a.client.ResendOTP(ctx, email, purpose); err != nil {
		return err
	}
	return nil
}

// Login validates the form, authenticates and persists the session. Any
// backend or network failure is reported as invalid credentials.
func (a *authService) Login(ctx context.Context, in forms.LoginInput) error {
	in.Normalize()
	if err := forms.ValidateLogin(in); err != nil {
		return err
	}

	resp, err := a.client.Login(ctx, in.Email, in.Password)
	if err != nil {
		a.log.Warn(ctx, "login rejected", "email", in.Email, "error", err)
		return surface(err, MsgInvalidCredentials)
	}
	if err := a.store.Save(ctx, resp.Credentials()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	a.log.Info(ctx, "login successful", "email", in.Email)
	return nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	a.log.Info(ctx, "logged out")
	return nil
}

func (a *authService) IsAuthenticated(ctx context.Context) bool {
	return a.store.IsAuthenticated(ctx)
}

// Session returns the persisted session, or ErrNotAuthenticated.
func (a *authService) Session(ctx context.Context) (*Session, error) {
	if !a.store.IsAuthenticated(ctx) {
		return nil, ErrNotAuthenticated
	}

	profile, err := a.store.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	exp, ok, err := a.store.TokenExpiry(ctx)
	if err != nil {
		return nil, fmt.Errorf("read token expiry: %w", err)
	}
	if !ok {
		exp = time.Time{}
	}
	return &Session{Profile: profile, Expires: exp}, nil
}

// surface replaces the display message of err with msg while keeping its
// Kind, status and cause.
func surface(err error, msg string) error {
	var fe *failure.Error
	if errors.As(err, &fe) {
		return &failure.Error{Kind: fe.Kind, Message: msg, Status: fe.Status, Err: fe.Err}
	}
	return &failure.Error{Kind: failure.KindTransport, Message: msg, Err: err}
}
