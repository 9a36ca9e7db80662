package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/agentportal/internal/client/client"
	"github.com/dmitrijs2005/agentportal/internal/client/forms"
	"github.com/dmitrijs2005/agentportal/internal/client/models"
	"github.com/dmitrijs2005/agentportal/internal/client/session"
	"github.com/dmitrijs2005/agentportal/internal/client/storage"
	"github.com/dmitrijs2005/agentportal/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

// fakeClient implements client.Client for AuthService unit tests.
type fakeClient struct {
	SignupRet *client.SignupResponse
	SignupErr error

	VerifyRet *client.AuthResponse
	VerifyErr error

	LoginRet *client.AuthResponse
	LoginErr error

	ResendErr error

	calls []string

	LastEmail    string
	LastPassword string
	LastCode     string
	LastPurpose  models.Purpose
}

func (f *fakeClient) Signup(_ context.Context, email, password string) (*client.SignupResponse, error) {
	f.calls = append(f.calls, "signup")
	f.LastEmail, f.LastPassword = email, password
	if f.SignupErr != nil {
		return nil, f.SignupErr
	}
	if f.SignupRet == nil {
		return &client.SignupResponse{Message: "OTP sent"}, nil
	}
	return f.SignupRet, nil
}

func (f *fakeClient) VerifyOTP(_ context.Context, email, code string) (*client.AuthResponse, error) {
	f.calls = append(f.calls, "verify")
	f.LastEmail, f.LastCode = email, code
	return f.VerifyRet, f.VerifyErr
}

func (f *fakeClient) Login(_ context.Context, email, password string) (*client.AuthResponse, error) {
	f.calls = append(f.calls, "login")
	f.LastEmail, f.LastPassword = email, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) ResendOTP(_ context.Context, email string, purpose models.Purpose) (*client.MessageResponse, error) {
	f.calls = append(f.calls, "resend")
	f.LastEmail, f.LastPurpose = email, purpose
	if f.ResendErr != nil {
		return nil, f.ResendErr
	}
	return &client.MessageResponse{Message: "OTP resent"}, nil
}

// ---- fake store ----

type fakeStore struct {
	saved    *models.Credentials
	SaveErr  error
	ClearErr error
	cleared  bool

	authed     bool
	profile    *models.Profile
	ProfileErr error
	exp        time.Time
	expOK      bool
}

func (s *fakeStore) Save(_ context.Context, c models.Credentials) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saved = &c
	s.authed = true
	return nil
}

func (s *fakeStore) IsAuthenticated(context.Context) bool { return s.authed }

func (s *fakeStore) Profile(context.Context) (*models.Profile, error) {
	return s.profile, s.ProfileErr
}

func (s *fakeStore) TokenExpiry(context.Context) (time.Time, bool, error) {
	return s.exp, s.expOK, nil
}

func (s *fakeStore) Clear(context.Context) error {
	s.cleared = true
	if s.ClearErr == nil {
		s.authed = false
	}
	return s.ClearErr
}

var agent = &models.Profile{Username: "alice", Email: "alice@example.com", Role: "agent", IsAvailable: true}

func authResp() *client.AuthResponse {
	return &client.AuthResponse{Access: "acc", Refresh: "ref", User: agent}
}

func validSignup() forms.SignupInput {
	return forms.SignupInput{Email: "alice@example.com", Password: "password1", ConfirmPassword: "password1"}
}

// ---- signup ----

func TestSignup_Success(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, &fakeStore{}, nil)

	in := validSignup()
	in.Email = "  alice@example.com "
	email, err := svc.Signup(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
	assert.Equal(t, "alice@example.com", fc.LastEmail)
	assert.Equal(t, "password1", fc.LastPassword)
}

func TestSignup_ValidationBlocksNetwork(t *testing.T) {
	tests := []struct {
		name string
		in   forms.SignupInput
		want string
	}{
		{"missing field", forms.SignupInput{Email: "a@b.co", Password: "password1"}, forms.MsgAllFieldsRequired},
		{"bad email", forms.SignupInput{Email: "nope", Password: "password1", ConfirmPassword: "password1"}, forms.MsgInvalidEmail},
		{"short password", forms.SignupInput{Email: "a@b.co", Password: "short", ConfirmPassword: "short"}, forms.MsgPasswordTooShort},
		{"mismatch", forms.SignupInput{Email: "a@b.co", Password: "password1", ConfirmPassword: "password2"}, forms.MsgPasswordsDoNotMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{}
			svc := NewAuthService(fc, &fakeStore{}, nil)

			_, err := svc.Signup(context.Background(), tt.in)

			require.Error(t, err)
			assert.True(t, failure.Is(err, failure.KindValidation))
			assert.Equal(t, tt.want, err.Error())
			assert.Empty(t, fc.calls)
		})
	}
}

func TestSignup_RemoteMessageSurfaced(t *testing.T) {
	fc := &fakeClient{SignupErr: failure.Remote(400, "Email already registered")}
	svc := NewAuthService(fc, &fakeStore{}, nil)

	_, err := svc.Signup(context.Background(), validSignup())

	require.Error(t, err)
	assert.Equal(t, "Email already registered", err.Error())
	assert.True(t, failure.Is(err, failure.KindRemote))
}

func TestSignup_TransportFailureUsesFallback(t *testing.T) {
	cause := failure.Transport(client.ErrUnavailable)
	fc := &fakeClient{SignupErr: cause}
	svc := NewAuthService(fc, &fakeStore{}, nil)

	_, err := svc.Signup(context.Background(), validSignup())

	require.Error(t, err)
	assert.Equal(t, MsgSignupFailed, err.Error())
	assert.ErrorIs(t, err, client.ErrUnavailable)
}

// ---- login ----

func TestLogin_PersistsCredentials(t *testing.T) {
	fc := &fakeClient{LoginRet: authResp()}
	st := &fakeStore{}
	svc := NewAuthService(fc, st, nil)

	err := svc.Login(context.Background(), forms.LoginInput{Email: "alice@example.com", Password: "x"})

	require.NoError(t, err)
	require.NotNil(t, st.saved)
	assert.Equal(t, models.Credentials{AccessToken: "acc", RefreshToken: "ref", User: agent}, *st.saved)
	assert.True(t, svc.IsAuthenticated(context.Background()))
}

func TestLogin_ValidationBlocksNetwork(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, &fakeStore{}, nil)

	err := svc.Login(context.Background(), forms.LoginInput{Email: "alice@example.com"})
	require.Error(t, err)
	assert.Equal(t, forms.MsgCredentialsRequired, err.Error())

	err = svc.Login(context.Background(), forms.LoginInput{Email: "alice", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, forms.MsgInvalidEmail, err.Error())

	assert.Empty(t, fc.calls)
}

func TestLogin_AnyFailureIsInvalidCredentials(t *testing.T) {
	for _, cause := range []error{
		failure.Remote(401, "Invalid credentials"),
		failure.Remote(403, "User is not an agent"),
		failure.Transport(errors.New("connection refused")),
	} {
		fc := &fakeClient{LoginErr: cause}
		st := &fakeStore{}
		svc := NewAuthService(fc, st, nil)

		err := svc.Login(context.Background(), forms.LoginInput{Email: "alice@example.com", Password: "x"})

		require.Error(t, err)
		assert.Equal(t, MsgInvalidCredentials, err.Error())
		assert.Equal(t, failure.KindOf(cause), failure.KindOf(err))
		assert.Nil(t, st.saved)
	}
}

func TestLogin_SaveErrorPropagates(t *testing.T) {
	saveErr := errors.New("disk full")
	svc := NewAuthService(&fakeClient{LoginRet: authResp()}, &fakeStore{SaveErr: saveErr}, nil)

	err := svc.Login(context.Background(), forms.LoginInput{Email: "alice@example.com", Password: "x"})
	assert.ErrorIs(t, err, saveErr)
}

// ---- otp ----

func TestVerifyOTP_Success(t *testing.T) {
	fc := &fakeClient{VerifyRet: authResp()}
	st := &fakeStore{}
	svc := NewAuthService(fc, st, nil)

	require.NoError(t, svc.VerifyOTP(context.Background(), "alice@example.com", "123456"))

	assert.Equal(t, "123456", fc.LastCode)
	require.NotNil(t, st.saved)
	assert.Equal(t, "acc", st.saved.AccessToken)
}

func TestVerifyOTP_RejectionMessage(t *testing.T) {
	fc := &fakeClient{VerifyErr: failure.Remote(400, "Invalid or expired OTP")}
	st := &fakeStore{}
	svc := NewAuthService(fc, st, nil)

	err := svc.VerifyOTP(context.Background(), "alice@example.com", "000000")

	require.Error(t, err)
	assert.Equal(t, MsgInvalidOTP, failure.MessageOf(err, ""))
	assert.Nil(t, st.saved)
}

func TestVerifyOTP_CancelledContextIsNotPersisted(t *testing.T) {
	fc := &fakeClient{VerifyRet: authResp()}
	st := &fakeStore{}
	svc := NewAuthService(fc, st, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.VerifyOTP(ctx, "alice@example.com", "123456")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, st.saved)
}

func TestResendOTP_PassesPurposeThrough(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, &fakeStore{}, nil)

	require.NoError(t, svc.ResendOTP(context.Background(), "alice@example.com", models.PurposeLogin))
	assert.Equal(t, models.PurposeLogin, fc.LastPurpose)

	fc.ResendErr = failure.Remote(429, "Too many requests")
	err := svc.ResendOTP(context.Background(), "alice@example.com", models.PurposeSignup)
	assert.Equal(t, "Too many requests", failure.MessageOf(err, ""))
}

// ---- session ----

func TestSession(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	st := &fakeStore{authed: true, profile: agent, exp: exp, expOK: true}
	svc := NewAuthService(&fakeClient{}, st, nil)

	s, err := svc.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, agent, s.Profile)
	assert.Equal(t, exp, s.Expires)
}

func TestSession_NotAuthenticated(t *testing.T) {
	svc := NewAuthService(&fakeClient{}, &fakeStore{}, nil)

	_, err := svc.Session(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSession_ProfileErrorPropagates(t *testing.T) {
	perr := errors.New("db locked")
	svc := NewAuthService(&fakeClient{}, &fakeStore{authed: true, ProfileErr: perr}, nil)

	_, err := svc.Session(context.Background())
	assert.ErrorIs(t, err, perr)
}

func TestLogout(t *testing.T) {
	st := &fakeStore{authed: true}
	svc := NewAuthService(&fakeClient{}, st, nil)

	require.NoError(t, svc.Logout(context.Background()))
	assert.True(t, st.cleared)
	assert.False(t, svc.IsAuthenticated(context.Background()))

	st.ClearErr = errors.New("clean-fail")
	assert.Error(t, svc.Logout(context.Background()))
}

// ---- with the real store ----

func TestLoginLogout_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := storage.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	svc := NewAuthService(&fakeClient{LoginRet: authResp()}, session.NewStore(db, false), nil)

	require.NoError(t, svc.Login(ctx, forms.LoginInput{Email: "alice@example.com", Password: "x"}))
	s, err := svc.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, agent, s.Profile)
	assert.True(t, s.Expires.IsZero(), "opaque token has no expiry claim")

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.IsAuthenticated(ctx))
}
