package models

import "time"

// Profile is the agent record returned by the backend alongside tokens and
// kept in the local-storage tier under key "user".
type Profile struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsAvailable bool   `json:"is_available"`
}

// Credentials is a session issued by a successful login or OTP verification.
// AccessToken and RefreshToken are either both set or both empty.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	User         *Profile
}

// SameSite mirrors the browser cookie attribute of the same name.
type SameSite string

const (
	SameSiteLax    SameSite = "Lax"
	SameSiteStrict SameSite = "Strict"
)

// Cookie is one entry of the cookie tier.
type Cookie struct {
	Name     string
	Value    string
	Path     string
	SameSite SameSite
	Secure   bool
	Expires  time.Time
}

// Expired reports whether the cookie is no longer valid at now.
func (c *Cookie) Expired(now time.Time) bool {
	return !now.Before(c.Expires)
}

// Purpose tells the backend which flow an OTP belongs to.
type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeLogin  Purpose = "login"
	PurposeReset  Purpose = "reset"
)
