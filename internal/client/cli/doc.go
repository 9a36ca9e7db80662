// Package cli provides the interactive agent portal command-line client.
//
// It wires configuration, the local session database, the API client and an
// interactive REPL. Typical flow: sign up, confirm the emailed code in the
// OTP prompt, land on the dashboard; or log in directly.
//
// Key features:
//   - Signup with OTP email verification (resend after a countdown)
//   - Login / Logout
//   - Dashboard guarded by the stored session
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and App.runOTPPrompt for details.
package cli
