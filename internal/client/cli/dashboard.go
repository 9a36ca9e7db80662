package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agentportal/internal/client/services"
)

// timeNow is a test seam for the dashboard's relative expiry.
var timeNow = time.Now

// Dashboard shows the signed-in agent. Without a session the user is sent
// back to login.
func (a *App) Dashboard(ctx context.Context) error {
	s, err := a.authService.Session(ctx)
	if errors.Is(err, services.ErrNotAuthenticated) {
		printlnFn("You are not logged in. Use 'login' to sign in.")
		return nil
	}
	if err != nil {
		return err
	}

	printlnFn("Agent dashboard")
	if p := s.Profile; p != nil {
		printlnFn("  Username: ", p.Username)
		printlnFn("  Email:    ", p.Email)
		printlnFn("  Role:     ", p.Role)
		printlnFn("  Available:", availability(p.IsAvailable))
	} else {
		printlnFn("  No profile stored for this session.")
	}
	if !s.Expires.IsZero() {
		left := s.Expires.Sub(timeNow()).Truncate(time.Minute)
		if left > 0 {
			printlnFn(fmt.Sprintf("  Session expires %s (in %s)", s.Expires.Local().Format(time.RFC1123), left))
		} else {
			printlnFn("  Session token has expired. Please log in again.")
		}
	}
	return nil
}

func availability(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
