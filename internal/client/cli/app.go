package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/agentportal/internal/client/client"
	"github.com/dmitrijs2005/agentportal/internal/client/config"
	"github.com/dmitrijs2005/agentportal/internal/client/models"
	"github.com/dmitrijs2005/agentportal/internal/client/otp"
	"github.com/dmitrijs2005/agentportal/internal/client/services"
	"github.com/dmitrijs2005/agentportal/internal/client/session"
	"github.com/dmitrijs2005/agentportal/internal/client/storage"
	"github.com/dmitrijs2005/agentportal/internal/filex"
	"github.com/dmitrijs2005/agentportal/internal/logging"
)

// otpWorkflow is the part of *otp.Workflow the OTP prompt drives.
type otpWorkflow interface {
	Open(ctx context.Context, email string, purpose models.Purpose, verify otp.VerifyFunc)
	Close(ctx context.Context)
	SetCode(raw string) string
	Submit(ctx context.Context) error
	PressEnter(ctx context.Context) (bool, error)
	Resend(ctx context.Context) error
	Snapshot() otp.View
}

type App struct {
	config      *config.Config
	log         logging.Logger
	authService services.AuthService
	otp         otpWorkflow
	reader      *bufio.Reader
	out         io.Writer
	db          *sql.DB
}

// NewApp opens the session database and wires the API client, the auth
// service and the OTP workflow from c.
func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	if _, err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		log.Error(ctx, "error preparing database directory", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	store := session.NewStore(db, c.IsProduction(), session.WithLogger(log))

	apiClient, err := client.NewHTTPClient(c.APIBaseURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	as := services.NewAuthService(apiClient, store, log)
	wf := otp.NewWorkflow(as,
		otp.WithCountdown(c.OTPResendCooldown),
		otp.WithLogger(log),
	)

	return &App{
		config:      c,
		log:         log,
		authService: as,
		otp:         wf,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		db:          db,
	}, nil
}

// Run starts the REPL and blocks until the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to the agent portal CLI (type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}

// Close releases the session database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.authService.IsAuthenticated(ctx)
}

func (a *App) getStatus(ctx context.Context) string {
	if !a.isLoggedIn(ctx) {
		return ""
	}
	s, err := a.authService.Session(ctx)
	if err != nil || s.Profile == nil {
		return "(signed in)"
	}
	return fmt.Sprintf("(%s)", s.Profile.Email)
}
