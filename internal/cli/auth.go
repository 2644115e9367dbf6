package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdir/internal/common"
)

// getSimpleText and getPassword point to the interactive input helpers and
// can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

const defaultRole = "user"

// errInvalidLogin hides whether the email or the password was wrong.
var errInvalidLogin = errors.New("invalid login")

// Register prompts for email, full name, password and role and adds the
// user to the directory. An empty role becomes "user".
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out, a.inFd)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	role, err := getSimpleText(a.reader, "Enter role (empty for "+defaultRole+")", a.out)
	if err != nil {
		return err
	}
	if role == "" {
		role = defaultRole
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.dir.Register(ctx, email, fullName, string(password), role)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (id %d)\n", user.Email, user.ID)
	return nil
}

// Login checks the credentials and starts a session. Unknown email and wrong
// password produce the same error.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out, a.inFd)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	user, err := a.dir.VerifyCredentials(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrIdentityNotFound) || errors.Is(err, common.ErrInvalidCredential) {
			a.logger.Info(ctx, "login rejected", "email", email)
			return errInvalidLogin
		}
		return err
	}

	if _, err := a.sessions.Begin(ctx, user.Email); err != nil {
		return err
	}
	a.userName = user.Email

	fmt.Fprintf(a.out, "Welcome, %s\n", user.FullName)
	return nil
}

// Whoami prints the user of the current session.
func (a *App) Whoami(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	email, err := a.sessions.Current(ctx)
	switch {
	case errors.Is(err, common.ErrNoSession):
		a.userName = ""
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken):
		a.userName = ""
		fmt.Fprintln(a.out, "Session is no longer valid, please log in again")
		return a.sessions.End(ctx)
	case err != nil:
		return err
	}

	user, err := a.dir.FindByIdentity(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>, role %s\n", user.FullName, user.Email, user.Role)
	return nil
}

// Logout ends the session. Logging out twice is fine.
func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.sessions.End(ctx); err != nil {
		return err
	}
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// restoreSession picks up a session saved by a previous run. Failures only
// mean starting logged out.
func (a *App) restoreSession(ctx context.Context) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	email, err := a.sessions.Current(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrNoSession) {
			a.logger.Debug(ctx, "saved session ignored", "error", err)
		}
		return
	}
	a.userName = email
	a.logger.Debug(ctx, "session restored", "email", email)
}
