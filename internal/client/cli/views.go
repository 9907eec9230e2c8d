package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/meetscribe/internal/client/client"
	"github.com/dmitrijs2005/meetscribe/internal/client/guard"
	"github.com/dmitrijs2005/meetscribe/internal/client/models"
)

var (
	errPageNotFound = errors.New("page not found")
	errNotAllowed   = errors.New("not allowed")
	errStillLoading = errors.New("session is loading")
)

// recentCount is how many transcriptions the dashboard lists.
const recentCount = 5

var loginErrors = map[string]string{
	"no_token":            "Google sign-in did not return a token.",
	"google_login_failed": "Google sign-in failed. Please try again.",
}

// Go navigates to path through the route guard and renders the view it
// lands on.
func (a *App) Go(ctx context.Context, path string) error {
	final, d := a.watcher.Navigate(path)

	switch d.Kind {
	case guard.NotFound:
		a.printf("Page not found: %s\n", path)
		return errPageNotFound
	case guard.Loading:
		a.printf("Loading…\n")
		return errStillLoading
	case guard.Redirect:
		a.printf("Too many redirects from %s\n", path)
		return errNotAllowed
	}

	a.setView(final)
	if final != path {
		a.printf("→ %s\n", final)
	}
	return a.render(ctx, final, d)
}

func (a *App) render(ctx context.Context, path string, d guard.Decision) error {
	switch d.Route.Pattern {
	case "/":
		a.printf("meetscribe: transcripts, summaries and quizzes for your meetings.\n")
		a.printf("Try 'features', 'pricing', 'register' or 'login'.\n")
	case "/features":
		a.printf("Features:\n  - Transcribe audio, video and YouTube recordings\n  - AI summaries and Q&A on every meeting\n  - Quizzes generated from the transcript\n  - PDF export\n")
	case "/pricing":
		a.printf("Pricing:\n  Free   - 3 transcriptions per month\n  Pro    - unlimited transcriptions, PDF export\n")
	case "/login":
		return a.renderLogin(path)
	case "/register":
		a.printf("Run 'register' to create an account.\n")
	case "/verify/{token}":
		return a.renderVerify(ctx, d.Param("token"))
	case "/auth/callback":
		return a.renderCallback(ctx, path)
	case "/dashboard":
		return a.renderDashboard(ctx)
	case "/transcriptions":
		return a.renderTranscriptions(ctx)
	case "/summary":
		return a.renderSummary(ctx)
	case "/transcriptions/{id}", "/meetings/{id}":
		return a.renderTranscription(ctx, d.Param("id"))
	case "/admin/dashboard":
		return a.renderAdminDashboard(ctx)
	case "/admin/users":
		return a.renderUsers(ctx)
	case "/admin/users/{id}":
		return a.renderUser(ctx, d.Param("id"))
	case "/profile":
		a.renderProfile()
	}
	return nil
}

// allowed reports whether the view at path would render for the current
// session. Commands that act on a view check it before calling the API.
func (a *App) allowed(path string) error {
	d := a.routes.Decide(a.session.State(), path)
	switch d.Kind {
	case guard.Render:
		return nil
	case guard.Loading:
		a.printf("Session is loading, try again.\n")
		return errStillLoading
	case guard.Redirect:
		target, _, _ := strings.Cut(d.Target, "?")
		if target == guard.LoginPath {
			a.printf("Log in first.\n")
		} else {
			a.printf("Not available for your account.\n")
		}
		return errNotAllowed
	}
	return errPageNotFound
}

// handleAPIError reports err. A rejected token ends the session.
func (a *App) handleAPIError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		a.printf("Your session has expired, please log in again.\n")
		a.session.Logout(ctx)
	case errors.Is(err, client.ErrNotFound):
		a.printf("Not found.\n")
	case errors.Is(err, client.ErrUnavailable):
		a.printf("Service unavailable, try again later.\n")
	default:
		a.printf("Error: %v\n", err)
	}
	return err
}

func (a *App) renderLogin(path string) error {
	_, rawQuery, _ := strings.Cut(path, "?")
	q, _ := url.ParseQuery(rawQuery)

	if msg, ok := loginErrors[q.Get("error")]; ok {
		a.printf("%s\n", msg)
	} else if code := q.Get("error"); code != "" {
		a.printf("Sign-in error: %s\n", code)
	}
	if next := q.Get("next"); next != "" {
		a.printf("Log in to continue to %s.\n", next)
	}
	a.printf("Run 'login' or 'google' to sign in.\n")
	return nil
}

func (a *App) renderVerify(ctx context.Context, token string) error {
	if !a.session.VerifyEmail(ctx, token) {
		a.printf("Email verification failed. The link may be invalid or expired.\n")
		return errNotAllowed
	}
	a.printf("Email verified.\n")
	if !a.isLoggedIn() {
		a.printf("You can now log in.\n")
	}
	return nil
}

func (a *App) renderCallback(ctx context.Context, path string) error {
	_, rawQuery, _ := strings.Cut(path, "?")
	q, _ := url.ParseQuery(rawQuery)
	token := strings.TrimSpace(q.Get("token"))

	ok := token != "" && a.session.CompleteGoogleLogin(ctx, token)
	if ok {
		a.printf("Signed in as %s.\n", a.session.User().Email)
	}
	return a.Go(ctx, guard.OAuthCallbackTarget(token != "", ok))
}

func (a *App) renderDashboard(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		return nil
	}
	a.printf("Welcome, %s!\n", displayName(u))
	if !u.IsVerified {
		a.printf("Your email is not verified. Run 'resend' to get a new link.\n")
	}

	items, err := a.transcriptions.List(ctx)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	if len(items) == 0 {
		a.printf("No transcriptions yet. Try 'youtube <url>' or 'upload <file>'.\n")
		return nil
	}
	if len(items) > recentCount {
		items = items[:recentCount]
	}
	a.printf("Recent transcriptions:\n")
	a.printTranscriptions(items)
	return nil
}

func (a *App) renderTranscriptions(ctx context.Context) error {
	items, err := a.transcriptions.List(ctx)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	if len(items) == 0 {
		a.printf("No transcriptions.\n")
		return nil
	}
	a.printTranscriptions(items)
	return nil
}

func (a *App) printTranscriptions(items []models.Transcription) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tCREATED")
	for _, t := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Type, formatTime(t.CreatedAt))
	}
	_ = w.Flush()
}

func (a *App) renderSummary(ctx context.Context) error {
	items, err := a.transcriptions.List(ctx)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	if len(items) == 0 {
		a.printf("Nothing to summarize yet.\n")
		return nil
	}
	for _, t := range items {
		a.printf("# %s (%s)\n%s\n\n", t.Title, formatTime(t.CreatedAt), truncate(t.Summary, 400))
	}
	return nil
}

func (a *App) renderTranscription(ctx context.Context, id string) error {
	t, err := a.transcriptions.Get(ctx, id)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}

	a.printf("%s\n", t.Title)
	a.printf("  id:       %s\n", t.ID)
	a.printf("  type:     %s\n", t.Type)
	if t.OriginalSource != "" {
		a.printf("  source:   %s\n", t.OriginalSource)
	}
	a.printf("  duration: %s\n", time.Duration(t.Duration*float64(time.Second)).Round(time.Second).String())
	a.printf("  created:  %s\n", formatTime(t.CreatedAt))
	if r := t.QuizResults; r != nil {
		a.printf("  quiz:     %d correct, %d wrong (%.0f%%)\n", r.CorrectCount, r.WrongCount, r.Percentage)
	}
	a.printf("\nSummary:\n%s\n\nTranscript:\n%s\n", t.Summary, t.Transcription)
	return nil
}

func (a *App) renderAdminDashboard(ctx context.Context) error {
	users, err := a.users.List(ctx)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}

	var admins, verified int
	for _, u := range users {
		if u.Role.IsAdmin() {
			admins++
		}
		if u.IsVerified {
			verified++
		}
	}
	a.printf("Admin dashboard\n  users:    %d\n  admins:   %d\n  verified: %d\n", len(users), admins, verified)
	return nil
}

func (a *App) renderUsers(ctx context.Context) error {
	users, err := a.users.List(ctx)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tVERIFIED")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role, u.IsVerified)
	}
	return w.Flush()
}

func (a *App) renderUser(ctx context.Context, id string) error {
	u, err := a.users.Get(ctx, id)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printUser(u)
	return nil
}

func (a *App) renderProfile() {
	if u := a.session.User(); u != nil {
		a.printUser(u)
	}
}

func (a *App) printUser(u *models.User) {
	a.printf("%s\n  id:       %s\n  email:    %s\n  role:     %s\n  verified: %t\n", displayName(u), u.ID, u.Email, u.Role, u.IsVerified)
}

func displayName(u *models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
