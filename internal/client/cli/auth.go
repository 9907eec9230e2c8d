package cli

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/meetscribe/internal/client/guard"
	"github.com/dmitrijs2005/meetscribe/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var (
	errRegisterFailed = errors.New("registration failed")
	errLoginFailed    = errors.New("login failed")
	errAlreadyIn      = errors.New("already logged in")
)

// Register prompts for name, email and password and creates an account.
// The session is not touched: the new account still has to verify its email
// and log in.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if !a.session.Register(ctx, name, email, password) {
		a.printf("Registration failed.\n")
		return errRegisterFailed
	}

	a.printf("Registered. Check your email for the verification link, then log in.\n")
	return a.Go(ctx, guard.LoginPath)
}

// Login prompts for credentials and starts a session. On success the user
// lands on the view they were sent to login from, or on their home view.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		a.printf("Already logged in, use 'logout' first.\n")
		return errAlreadyIn
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	next := a.returnTo()

	if !a.session.Login(ctx, email, password) {
		a.printf("Login failed. Check your email and password.\n")
		return errLoginFailed
	}

	u := a.session.User()
	a.printf("Logged in as %s.\n", u.Email)
	if next == "" {
		next = guard.Home(u.Role)
	}
	return a.Go(ctx, next)
}

// returnTo is the ?next= target of the current login view, if any.
func (a *App) returnTo() string {
	path, _ := a.watcher.Current()
	p, rawQuery, _ := strings.Cut(path, "?")
	if p != guard.LoginPath {
		return ""
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return ""
	}
	next := q.Get("next")
	if !strings.HasPrefix(next, "/") {
		return ""
	}
	return next
}

// GoogleLogin prints the URL that starts the federated login. The provider
// finishes on the callback route; paste the resulting URL or token into
// 'callback'.
func (a *App) GoogleLogin(ctx context.Context) error {
	a.printf("Open this URL in a browser to sign in with Google:\n  %s\n", a.session.GoogleLoginURL())
	a.printf("Then run: callback <redirect URL or token>\n")
	return nil
}

// Callback completes the federated login. arg is either the full callback
// URL the browser landed on or the bare token.
func (a *App) Callback(ctx context.Context, arg string) error {
	return a.Go(ctx, "/auth/callback?token="+url.QueryEscape(callbackToken(arg)))
}

func callbackToken(arg string) string {
	arg = strings.TrimSpace(arg)
	if !strings.HasPrefix(arg, "/") && !strings.Contains(arg, "://") {
		return arg
	}
	u, err := url.Parse(arg)
	if err != nil {
		return ""
	}
	return u.Query().Get("token")
}

// Verify opens the verification view for token.
func (a *App) Verify(ctx context.Context, token string) error {
	return a.Go(ctx, "/verify/"+url.PathEscape(token))
}

// Resend requests a new verification email for the current user.
func (a *App) Resend(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		a.printf("Log in first.\n")
		return errNotAllowed
	}
	if u.IsVerified {
		a.printf("Your email is already verified.\n")
		return nil
	}
	if a.session.ResendVerificationEmail(ctx) {
		a.printf("Verification email requested for %s.\n", u.Email)
	}
	return nil
}

// Refresh reloads the profile from the API. A failure ends the session and
// the watcher moves the view to the login page.
func (a *App) Refresh(ctx context.Context) error {
	a.session.FetchUserProfile(ctx)
	if !a.isLoggedIn() {
		a.printf("Could not refresh the profile, you have been logged out.\n")
		return errLoginFailed
	}
	a.printf("Profile refreshed.\n")
	return nil
}

// Logout ends the session and shows the landing view.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.printf("Logged out.\n")
	return a.Go(ctx, "/")
}
