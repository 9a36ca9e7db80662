// Package client talks to the agent portal backend.
//
// # Overview
//
//  1. A transport-agnostic API contract (see the Client interface) with the
//     four agent endpoints: Signup, VerifyOTP, Login and ResendOTP.
//  2. HTTPClient, the JSON-over-HTTP implementation. It attaches the bearer
//     access token from a TokenSource, keeps server-set cookies in a cookie
//     jar, tags each request with an X-Request-Id and normalises every
//     failure into a *failure.Error.
//
// # Error Handling
//
// Non-2xx responses become failure.KindRemote with the backend's "detail" or
// "message" text (or "API request failed"). Network errors and undecodable
// bodies become failure.KindTransport and also match ErrUnavailable with
// errors.Is.
package client
