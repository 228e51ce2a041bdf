package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/bizdir/app/models"
	"github.com/ManuelReschke/bizdir/app/repository"
	"github.com/ManuelReschke/bizdir/internal/pkg/testutil"
)

func TestUserList(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	for _, u := range []struct{ name, email, role string }{
		{"Marge Simpson", "marge@example.com", models.ROLE_USER},
		{"Moe Szyslak", "MOE@example.com", models.ROLE_OWNER},
		{"Seymour Skinner", "skinner@example.com", models.ROLE_ADMIN},
	} {
		user, err := models.CreateUser(u.name, u.email, "secret123")
		require.NoError(t, err)
		user.Role = u.role
		require.NoError(t, repos.User.Create(user))
	}

	all, total, err := repos.User.List(repository.UserFilter{}, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 2)

	found, total, err := repos.User.List(repository.UserFilter{Query: "moe"}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "moe@example.com", found[0].Email, "emails are stored lowercase")

	owners, total, err := repos.User.List(repository.UserFilter{Role: models.ROLE_OWNER}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "Moe Szyslak", owners[0].Name)

	got, err := repos.User.GetByEmail(" Moe@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, owners[0].ID, got.ID)
}

func TestUpdateRoleKeepsAdmins(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	admin, err := models.CreateUser("Seymour Skinner", "skinner@example.com", "secret123")
	require.NoError(t, err)
	admin.Role = models.ROLE_ADMIN
	require.NoError(t, repos.User.Create(admin))

	require.NoError(t, repos.User.UpdateRole(admin.ID, models.ROLE_OWNER))
	got, err := repos.User.GetByID(admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ROLE_ADMIN, got.Role)
}

func TestDeleteUserDropsProviderLinks(t *testing.T) {
	repos := repository.NewRepositories(testutil.NewDB(t))
	user, err := models.CreateUser("Ned Flanders", "ned@example.com", "secret123")
	require.NoError(t, err)
	require.NoError(t, repos.User.Create(user))
	require.NoError(t, repos.ProviderAccount.Save(&models.ProviderAccount{UserID: user.ID, Provider: "google", ProviderUserID: "g-1"}))

	require.NoError(t, repos.User.Delete(user.ID))

	_, err = repos.User.GetByID(user.ID)
	assert.Error(t, err)
	_, err = repos.ProviderAccount.GetByProvider("google", "g-1")
	assert.Error(t, err)
}
