package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/meetscribe/internal/client/guard"
	"github.com/dmitrijs2005/meetscribe/internal/client/models"
)

func adminUserPath(id string) string {
	return "/admin/users/" + id
}

func parseRole(s string) (models.Role, error) {
	switch r := models.Role(s); r {
	case models.RoleUser, models.RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q, use user or admin", s)
}

// SetRole changes the role of an account.
func (a *App) SetRole(ctx context.Context, id, role string) error {
	if err := a.allowed(adminUserPath(id)); err != nil {
		return err
	}
	r, err := parseRole(role)
	if err != nil {
		a.printf("%v\n", err)
		return err
	}

	u, err := a.users.Update(ctx, id, "", "", r)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printf("%s is now %s.\n", u.Email, u.Role)
	a.refreshIfSelf(ctx, id)
	return nil
}

// EditUser prompts for name, email and role of an account. Empty answers
// keep the current values.
func (a *App) EditUser(ctx context.Context, id string) error {
	if err := a.allowed(adminUserPath(id)); err != nil {
		return err
	}

	cur, err := a.users.Get(ctx, id)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Name [%s]", cur.Name), a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, fmt.Sprintf("Email [%s]", cur.Email), a.out)
	if err != nil {
		return err
	}
	roleText, err := getSimpleText(a.reader, fmt.Sprintf("Role [%s]", cur.Role), a.out)
	if err != nil {
		return err
	}

	role := cur.Role
	if roleText != "" {
		if role, err = parseRole(roleText); err != nil {
			a.printf("%v\n", err)
			return err
		}
	}

	u, err := a.users.Update(ctx, id, name, email, role)
	if err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printUser(u)
	a.refreshIfSelf(ctx, id)
	return nil
}

// DeleteUser removes an account after confirmation.
func (a *App) DeleteUser(ctx context.Context, id string) error {
	if err := a.allowed(adminUserPath(id)); err != nil {
		return err
	}
	if err := a.confirm(fmt.Sprintf("Delete user %s?", id)); err != nil {
		return err
	}

	if err := a.users.Delete(ctx, id); err != nil {
		return a.handleAPIError(ctx, err)
	}
	a.printf("Deleted.\n")
	if u := a.session.User(); u != nil && u.ID == id {
		a.session.Logout(ctx)
		return a.Go(ctx, "/")
	}
	return nil
}

// refreshIfSelf reloads the session profile after an admin edited their
// own account, so a role change takes effect on the guard immediately.
func (a *App) refreshIfSelf(ctx context.Context, id string) {
	u := a.session.User()
	if u == nil || u.ID != id {
		return
	}
	a.session.FetchUserProfile(ctx)
	if nu := a.session.User(); nu != nil && !nu.Role.IsAdmin() {
		_ = a.Go(ctx, guard.Home(nu.Role))
	}
}
