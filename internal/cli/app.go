package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/dmitrijs2005/userdir/internal/models"
)

// Directory is what the CLI needs from the user directory store.
type Directory interface {
	Register(ctx context.Context, email, fullName, password, role string) (*models.UserRecord, error)
	FindByIdentity(ctx context.Context, email string) (*models.UserRecord, error)
	VerifyCredentials(ctx context.Context, email, password string) (*models.UserRecord, error)
	ListAll(ctx context.Context) ([]models.UserRecord, error)
}

// Sessions remembers who is logged in between runs.
type Sessions interface {
	Begin(ctx context.Context, email string) (string, error)
	Current(ctx context.Context) (string, error)
	End(ctx context.Context) error
}

type App struct {
	dir      Directory
	sessions Sessions
	logger   logging.Logger
	reader   *bufio.Reader
	inFd     int
	out      io.Writer
	timeout  time.Duration
	userName string
}

// NewApp builds the CLI. Every storage round trip a command makes is bounded
// by timeout; zero means no bound.
func NewApp(dir Directory, sessions Sessions, logger logging.Logger, in io.Reader, out io.Writer, timeout time.Duration) *App {
	return &App{
		dir:      dir,
		sessions: sessions,
		logger:   logger,
		reader:   bufio.NewReader(in),
		inFd:     inputFd(in),
		out:      out,
		timeout:  timeout,
	}
}

// Run restores the saved session, if any, and blocks in the REPL until the
// user exits, input ends or ctx is cancelled. A read blocked on the terminal
// is abandoned on cancellation.
func (a *App) Run(ctx context.Context) {
	printlnFn("Welcome to userdir CLI (type 'help' for commands)")
	a.restoreSession(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.getStatus, a.reader)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	if ctx.Err() != nil {
		printlnFn("Bye!")
	}
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}

func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
