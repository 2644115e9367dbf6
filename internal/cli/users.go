package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/models"
)

var errLoginRequired = errors.New("login required")

// requireSession checks the stored session rather than the cached user name,
// so an expired, removed or tampered token stops access. Broken tokens are
// cleared.
func (a *App) requireSession(ctx context.Context) error {
	email, err := a.sessions.Current(ctx)
	switch {
	case errors.Is(err, common.ErrNoSession):
		a.userName = ""
		return errLoginRequired
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken):
		a.userName = ""
		if err := a.sessions.End(ctx); err != nil {
			return err
		}
		return errLoginRequired
	case err != nil:
		return err
	}
	a.userName = email
	return nil
}

// Find prints one user. Passwords are never shown.
func (a *App) Find(ctx context.Context, email string) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.requireSession(ctx); err != nil {
		return err
	}

	user, err := a.dir.FindByIdentity(ctx, email)
	if errors.Is(err, common.ErrIdentityNotFound) {
		fmt.Fprintf(a.out, "No user with email %s\n", email)
		return nil
	}
	if err != nil {
		return err
	}

	return a.printUsers([]models.UserRecord{*user})
}

// List prints the whole directory in registration order.
func (a *App) List(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.requireSession(ctx); err != nil {
		return err
	}

	users, err := a.dir.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(a.out, "Directory is empty")
		return nil
	}
	return a.printUsers(users)
}

func (a *App) printUsers(users []models.UserRecord) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tFULL NAME\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.FullName, u.Role, u.CreatedAt)
	}
	return tw.Flush()
}
