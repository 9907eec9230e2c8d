package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/meetscribe/internal/client/client"
	"github.com/dmitrijs2005/meetscribe/internal/client/models"
)

func TestUserAdmin_Anonymous(t *testing.T) {
	svc := NewUserAdminService(&fakeClient{}, staticToken(""), Deadlines{})

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.ErrorIs(t, svc.Delete(context.Background(), "u1"), client.ErrUnauthorized)
}

func TestUserAdmin_HungCallHitsDeadline(t *testing.T) {
	svc := NewUserAdminService(&fakeClient{Hang: true}, staticToken("tok"), Deadlines{Request: 20 * time.Millisecond})

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUserAdmin_ListGetDelete(t *testing.T) {
	fc := &fakeClient{Users: []models.User{{ID: "u1"}, {ID: "u2"}}, User: &models.User{ID: "u2"}}
	svc := NewUserAdminService(fc, staticToken("admin-tok"), Deadlines{})
	ctx := context.Background()

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "admin-tok", fc.LastToken)

	u, err := svc.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", u.ID)

	require.NoError(t, svc.Delete(ctx, "u2"))
}

func TestUserAdmin_Update_FillsBlanksFromCurrent(t *testing.T) {
	fc := &fakeClient{User: &models.User{ID: "u1", Name: "Ann", Email: "ann@x"}}
	svc := NewUserAdminService(fc, staticToken("tok"), Deadlines{})

	u, err := svc.Update(context.Background(), "u1", "", "new@x", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "Ann", "new@x"}, fc.LastUpdateUser)
	assert.Equal(t, models.RoleAdmin, fc.LastUpdateRole)
	assert.True(t, u.Role.IsAdmin())
}

func TestUserAdmin_Update_RejectsUnknownRole(t *testing.T) {
	fc := &fakeClient{}
	svc := NewUserAdminService(fc, staticToken("tok"), Deadlines{})

	_, err := svc.Update(context.Background(), "u1", "n", "e", models.Role("root"))
	require.Error(t, err)
	assert.Nil(t, fc.LastUpdateUser)
}
