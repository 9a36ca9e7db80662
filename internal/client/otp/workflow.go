// Package otp implements the OTP verification workflow: a 6-digit code entry
// tied to an email and a purpose, a resend countdown, and verify/resend
// actions that run the caller's callbacks.
//
// The workflow is the model behind the OTP prompt. It is safe for concurrent
// use: countdown ticks fire on timer goroutines while input arrives from the
// prompt loop.
package otp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/agentportal/internal/client/models"
	"github.com/dmitrijs2005/agentportal/internal/failure"
	"github.com/dmitrijs2005/agentportal/internal/logging"
)

const (
	CodeLength = 6

	DefaultCountdown = 60 * time.Second

	MsgInvalidLength = "Please enter a valid 6-digit OTP"
	MsgInvalidOTP    = "Invalid OTP"
	MsgResendFailed  = "Failed to resend OTP"
)

var (
	ErrClosed         = errors.New("otp workflow is closed")
	ErrBusy           = errors.New("otp request already in flight")
	ErrResendNotReady = errors.New("resend is not available yet")
)

// State is the workflow's position in its lifecycle.
type State int

const (
	StateClosed State = iota
	StateIdle
	StateSubmitting
	StateResending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateResending:
		return "resending"
	}
	return "closed"
}

// VerifyFunc exchanges a complete code for a session. A nil return means
// success; the workflow then leaves closing to the caller.
type VerifyFunc func(ctx context.Context, code string) error

// Resender asks the backend for a fresh code.
type Resender interface {
	ResendOTP(ctx context.Context, email string, purpose models.Purpose) error
}

// View is a point-in-time copy of the workflow for rendering.
type View struct {
	State            State
	Email            string
	Purpose          models.Purpose
	Code             string
	RemainingSeconds int
	ResendEnabled    bool
	Error            string
}

func (v View) IsOpen() bool { return v.State != StateClosed }

func (v View) Busy() bool { return v.State == StateSubmitting || v.State == StateResending }

type Workflow struct {
	mu sync.Mutex

	clock     Clock
	resender  Resender
	countdown int
	onClose   func()
	log       logging.Logger

	state     State
	email     string
	purpose   models.Purpose
	verify    VerifyFunc
	code      string
	remaining int
	errMsg    string

	// epoch changes on every Open and Close; results of requests started in
	// an older epoch are dropped.
	epoch uint64

	// tickGen changes whenever the pending tick is cancelled or replaced, so
	// a tick that already started firing can tell it is stale.
	tickGen  uint64
	timer    Timer
	inflight context.CancelFunc
}

type Option func(*Workflow)

func WithClock(c Clock) Option {
	return func(w *Workflow) { w.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(w *Workflow) { w.log = l }
}

// WithOnClose registers a callback run after every transition to closed.
func WithOnClose(f func()) Option {
	return func(w *Workflow) { w.onClose = f }
}

// WithCountdown sets the resend cooldown. It is rounded down to whole seconds.
func WithCountdown(d time.Duration) Option {
	return func(w *Workflow) { w.countdown = int(d / time.Second) }
}

func NewWorkflow(resender Resender, opts ...Option) *Workflow {
	w := &Workflow{
		clock:     realClock{},
		resender:  resender,
		countdown: int(DefaultCountdown / time.Second),
		log:       logging.Nop(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Open starts a challenge for email. An empty purpose means signup. Opening
// always resets the code, the error and the countdown, and abandons whatever
// the previous opening had in flight.
func (w *Workflow) Open(ctx context.Context, email string, purpose models.Purpose, verify VerifyFunc) {
	if verify == nil {
		panic("otp: nil VerifyFunc")
	}
	if purpose == "" {
		purpose = models.PurposeSignup
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.teardownLocked()
	w.epoch++
	w.state = StateIdle
	w.email = email
	w.purpose = purpose
	w.verify = verify
	w.code = ""
	w.errMsg = ""
	w.remaining = w.countdown
	w.scheduleTickLocked()

	w.log.Info(ctx, "otp challenge opened", "email", email, "purpose", purpose)
}

// Close dismisses the challenge. Closing an already closed workflow is a no-op.
func (w *Workflow) Close(ctx context.Context) {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return
	}
	w.teardownLocked()
	w.epoch++
	w.state = StateClosed
	w.email, w.purpose, w.verify = "", "", nil
	w.code, w.errMsg, w.remaining = "", "", 0
	onClose := w.onClose
	w.mu.Unlock()

	w.log.Info(ctx, "otp challenge closed")
	if onClose != nil {
		onClose()
	}
}

// SetCode replaces the entered code with the digits of raw, capped at six,
// and clears the error. Input is ignored unless the workflow is idle.
func (w *Workflow) SetCode(raw string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateIdle {
		return w.code
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == CodeLength {
				break
			}
		}
	}
	w.code = b.String()
	w.errMsg = ""
	return w.code
}

// Submit verifies the entered code through the VerifyFunc given to Open.
// A code that is not exactly six digits fails locally without calling it.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if err := w.readyLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if len(w.code) != CodeLength {
		w.errMsg = MsgInvalidLength
		w.mu.Unlock()
		return failure.Validation(MsgInvalidLength)
	}

	code, verify, epoch := w.code, w.verify, w.epoch
	opCtx := w.beginLocked(ctx, StateSubmitting)
	w.mu.Unlock()

	err := verify(opCtx, code)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.finishLocked(epoch) {
		return ErrClosed
	}
	if err != nil {
		w.errMsg = displayMessage(err, MsgInvalidOTP)
		w.log.Warn(ctx, "otp verification failed", "email", w.email, "error", err)
		return err
	}
	return nil
}

// PressEnter submits only when exactly six digits are entered and reports
// whether a submission happened.
func (w *Workflow) PressEnter(ctx context.Context) (bool, error) {
	w.mu.Lock()
	ready := w.state == StateIdle && len(w.code) == CodeLength
	w.mu.Unlock()

	if !ready {
		return false, nil
	}
	return true, w.Submit(ctx)
}

// Resend requests a new code once the countdown has expired. On success the
// code and error are cleared and the countdown restarts.
func (w *Workflow) Resend(ctx context.Context) error {
	w.mu.Lock()
	if err := w.readyLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.remaining > 0 {
		w.mu.Unlock()
		return ErrResendNotReady
	}

	email, purpose, epoch := w.email, w.purpose, w.epoch
	opCtx := w.beginLocked(ctx, StateResending)
	w.mu.Unlock()

	err := w.resender.ResendOTP(opCtx, email, purpose)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.finishLocked(epoch) {
		return ErrClosed
	}
	if err != nil {
		w.errMsg = displayMessage(err, MsgResendFailed)
		w.log.Warn(ctx, "otp resend failed", "email", email, "error", err)
		return err
	}

	w.code = ""
	w.errMsg = ""
	w.remaining = w.countdown
	w.scheduleTickLocked()
	w.log.Info(ctx, "otp resent", "email", email, "purpose", purpose)
	return nil
}

// Snapshot returns the current state for rendering.
func (w *Workflow) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	return View{
		State:            w.state,
		Email:            w.email,
		Purpose:          w.purpose,
		Code:             w.code,
		RemainingSeconds: w.remaining,
		ResendEnabled:    w.state != StateClosed && w.remaining == 0,
		Error:            w.errMsg,
	}
}

func (w *Workflow) readyLocked() error {
	switch w.state {
	case StateClosed:
		return ErrClosed
	case StateSubmitting, StateResending:
		return ErrBusy
	}
	return nil
}

func (w *Workflow) beginLocked(ctx context.Context, s State) context.Context {
	opCtx, cancel := context.WithCancel(ctx)
	w.inflight = cancel
	w.state = s
	return opCtx
}

// finishLocked ends the in-flight request. It returns false when the
// workflow was closed or reopened meanwhile, in which case nothing may change.
func (w *Workflow) finishLocked(epoch uint64) bool {
	if w.epoch != epoch {
		return false
	}
	if w.inflight != nil {
		w.inflight()
		w.inflight = nil
	}
	w.state = StateIdle
	return true
}

func (w *Workflow) teardownLocked() {
	w.stopTickLocked()
	if w.inflight != nil {
		w.inflight()
		w.inflight = nil
	}
}

func (w *Workflow) stopTickLocked() {
	w.tickGen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Workflow) scheduleTickLocked() {
	w.stopTickLocked()
	if w.remaining <= 0 {
		return
	}
	gen := w.tickGen
	w.timer = w.clock.AfterFunc(time.Second, func() { w.tick(gen) })
}

func (w *Workflow) tick(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.tickGen || w.state == StateClosed {
		return
	}
	w.timer = nil
	if w.remaining > 0 {
		w.remaining--
	}
	w.scheduleTickLocked()
}

// displayMessage picks the text shown in the prompt. A transport failure
// whose message is still the raw network error is replaced by fallback.
func displayMessage(err error, fallback string) string {
	var fe *failure.Error
	if errors.As(err, &fe) {
		if fe.Kind == failure.KindTransport && (fe.Err == nil || fe.Message == fe.Err.Error()) {
			return fallback
		}
		return failure.MessageOf(fe, fallback)
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
