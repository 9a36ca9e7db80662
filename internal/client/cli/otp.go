package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/agentportal/internal/client/models"
	"github.com/dmitrijs2005/agentportal/internal/client/otp"
)

// runOTPPrompt opens the OTP workflow for email and reads lines until the
// code is verified, the user cancels, or input ends. It reports whether the
// code was verified.
//
// Input lines:
//
//	<digits>  enter the code; six digits submit it
//	resend    request a new code once the countdown has expired
//	cancel    close the prompt
//	(empty)   redraw the countdown
func (a *App) runOTPPrompt(ctx context.Context, email string, purpose models.Purpose) (bool, error) {
	a.otp.Open(ctx, email, purpose, func(ctx context.Context, code string) error {
		return a.authService.VerifyOTP(ctx, email, code)
	})
	defer a.otp.Close(ctx)

	for {
		line, err := getSimpleText(a.reader, renderOTP(a.otp.Snapshot()), a.out)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(line) {
		case "":
			continue

		case "cancel":
			printlnFn("Verification cancelled.")
			return false, nil

		case "resend":
			switch err := a.otp.Resend(ctx); {
			case err == nil:
				printlnFn("A new code was sent to", email)
			case errors.Is(err, otp.ErrResendNotReady):
				printlnFn(fmt.Sprintf("You can request a new code in %ds.", a.otp.Snapshot().RemainingSeconds))
			}

		default:
			a.otp.SetCode(line)
			submitted, err := a.otp.PressEnter(ctx)
			if !submitted {
				err = a.otp.Submit(ctx)
			}
			if err == nil {
				return true, nil
			}
			if errors.Is(err, otp.ErrClosed) {
				return false, err
			}
		}
	}
}

// renderOTP draws the prompt for the current workflow view.
func renderOTP(v otp.View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enter the 6-digit code sent to %s", v.Email)
	if v.Error != "" {
		fmt.Fprintf(&b, "\n  %s", v.Error)
	}
	if v.ResendEnabled {
		b.WriteString("\n(type 'resend' for a new code, 'cancel' to stop)")
	} else {
		fmt.Fprintf(&b, "\n(resend available in %ds, 'cancel' to stop)", v.RemainingSeconds)
	}
	return b.String()
}
