package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cloudbox/internal/common"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var confirm = Confirm

// Register prompts for a username and password and creates an account.
// The session is not changed: the user logs in afterwards.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registration successful. Please log in.")
	return nil
}

// Login prompts for credentials, starts a session and shows the file list
// loaded by the session controller.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", a.session.Username())
	a.printFiles(a.files.Files())
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the current user and, for JWT tokens, the token expiry.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	fmt.Fprintf(a.out, "User: %s\n", a.session.Username())
	claims, err := a.session.Claims()
	if err != nil {
		a.logger.Debug(ctx, "token is not a readable jwt", "error", err)
		return nil
	}
	if claims.Subject != "" {
		fmt.Fprintf(a.out, "Subject: %s\n", claims.Subject)
	}
	if !claims.ExpiresAt.IsZero() {
		state := "valid"
		if claims.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(a.out, "Token expires: %s (%s)\n", claims.ExpiresAt.Local().Format(time.DateTime), state)
	}
	return nil
}
