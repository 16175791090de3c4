package services_test

import (
	"context"
	"testing"

	"github.com/mgltickets/api/internal/auth"
	"github.com/mgltickets/api/internal/models"
	"github.com/mgltickets/api/internal/repositories"
	"github.com/mgltickets/api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_HashesPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	user, err := e.users.Register(ctx, services.RegisterInput{
		Name:        "Njeri Mwangi",
		Email:       "  Njeri@Example.com ",
		Password:    "supersecret",
		PhoneNumber: "0700111222",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAttendee, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)

	stored, err := e.users.GetByEmail(ctx, "njeri@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "supersecret"))
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	input := services.RegisterInput{Name: "Brian", Email: "brian@example.com", Password: "password123"}

	_, err := e.users.Register(ctx, input)
	require.NoError(t, err)

	input.Email = "BRIAN@example.com"
	_, err = e.users.Register(ctx, input)
	require.ErrorIs(t, err, services.ErrEmailTaken)
	assert.ErrorIs(t, err, services.ErrConflict)

	total, err := e.users.Count(ctx, repositories.UserFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := map[string]services.RegisterInput{
		"short name":     {Name: "Al", Email: "al@example.com", Password: "password123"},
		"bad email":      {Name: "Alice", Email: "alice-at-example", Password: "password123"},
		"short password": {Name: "Alice", Email: "alice@example.com", Password: "short"},
		"unknown role":   {Name: "Alice", Email: "alice@example.com", Password: "password123", Role: "superuser"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.users.Register(ctx, input)
			require.ErrorIs(t, err, services.ErrValidation)

			var validationErr *services.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Field)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.register(t, "kevin", models.RoleAttendee)

	got, err := e.users.Authenticate(ctx, user.Email, "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = e.users.Authenticate(ctx, user.Email, "wrong-password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = e.users.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = e.users.Deactivate(ctx, user.ID)
	require.NoError(t, err)
	_, err = e.users.Authenticate(ctx, user.Email, "password123")
	assert.ErrorIs(t, err, services.ErrUserInactive)
}

func TestUpdateContact(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.register(t, "first", models.RoleAttendee)
	second := e.register(t, "second", models.RoleAttendee)

	updated, err := e.users.UpdateContact(as(first), first.ID, nil, ptr("0799000000"))
	require.NoError(t, err)
	assert.Equal(t, "0799000000", updated.PhoneNumber)
	assert.Equal(t, first.Email, updated.Email)

	_, err = e.users.UpdateContact(ctx, first.ID, ptr(second.Email), nil)
	assert.ErrorIs(t, err, services.ErrEmailTaken)

	_, err = e.users.UpdateContact(ctx, first.ID, ptr("nonsense"), nil)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = e.users.UpdateContact(as(second), first.ID, nil, ptr("0700000000"))
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestUpdatePassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.register(t, "wanjiku", models.RoleAttendee)

	_, err := e.users.UpdatePassword(ctx, user.ID, "short")
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = e.users.UpdatePassword(ctx, user.ID, "brand-new-password")
	require.NoError(t, err)

	_, err = e.users.Authenticate(ctx, user.Email, "brand-new-password")
	assert.NoError(t, err)
	_, err = e.users.Authenticate(ctx, user.Email, "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRoleHelpers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.register(t, "mutua", models.RoleAttendee)

	steps := []struct {
		action string
		want   models.Role
	}{
		{"promote-organizer", models.RoleOrganizer},
		{"promote-organizer-admin", models.RoleAdmin},
		{"demote-admin-organizer", models.RoleOrganizer},
		{"demote-organizer", models.RoleAttendee},
		{"promote-admin", models.RoleAdmin},
		{"demote-admin", models.RoleAttendee},
	}
	for _, step := range steps {
		updated, err := e.users.RoleAction(ctx, user.ID, step.action)
		require.NoError(t, err, step.action)
		assert.Equal(t, step.want, updated.Role, step.action)
	}

	_, err := e.users.RoleAction(ctx, user.ID, "crown")
	assert.ErrorIs(t, err, services.ErrValidation)

	admins, err := e.users.Count(ctx, repositories.UserFilter{Role: ptr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.EqualValues(t, 0, admins)
}

func TestFlagsAndDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.register(t, "akinyi", models.RoleAttendee)

	verified, err := e.users.Verify(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	unverified, err := e.users.Unverify(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, unverified.IsVerified)

	found, err := e.users.SearchByName(ctx, "AKIN")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, e.users.Delete(ctx, user.ID))
	assert.ErrorIs(t, e.users.Delete(ctx, user.ID), services.ErrNotFound)

	_, err = e.users.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
