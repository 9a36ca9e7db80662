package cli

import (
	"context"

	"github.com/dmitrijs2005/agentportal/internal/client/forms"
	"github.com/dmitrijs2005/agentportal/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for an email, a password and its confirmation, registers
// the agent and then runs the OTP prompt for the emailed code. On a verified
// code the dashboard is shown.
//
// Password buffers are wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer wipe(confirm)

	sent, err := a.authService.Signup(ctx, forms.SignupInput{
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
	})
	if err != nil {
		return err
	}

	printlnFn("A verification code was sent to", sent)
	return a.verifyAndShowDashboard(ctx, sent, models.PurposeSignup)
}

// Verify re-opens the OTP prompt for a code received earlier.
// Usage: verify <email> [signup|login|reset].
func (a *App) Verify(ctx context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: verify <email> [signup|login|reset]")
		return nil
	}

	purpose := models.PurposeSignup
	if len(args) > 1 {
		switch p := models.Purpose(args[1]); p {
		case models.PurposeSignup, models.PurposeLogin, models.PurposeReset:
			purpose = p
		default:
			printlnFn("Unknown purpose:", args[1])
			return nil
		}
	}
	return a.verifyAndShowDashboard(ctx, args[0], purpose)
}

func (a *App) verifyAndShowDashboard(ctx context.Context, email string, purpose models.Purpose) error {
	verified, err := a.runOTPPrompt(ctx, email, purpose)
	if err != nil || !verified {
		return err
	}
	printlnFn("Email verified.")
	return a.Dashboard(ctx)
}

// Login prompts for credentials, authenticates and shows the dashboard.
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	if err := a.authService.Login(ctx, forms.LoginInput{Email: email, Password: string(password)}); err != nil {
		return err
	}

	printlnFn("Login successful.")
	return a.Dashboard(ctx)
}

// Logout drops the stored session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	printlnFn("Logged out.")
	return nil
}
