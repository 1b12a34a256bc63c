package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proprio/propertyhub/internal/domain/property"
	"github.com/proprio/propertyhub/internal/domain/user"
)

func strptr(s string) *string { return &s }

func TestUsersRepo_CreateAndDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo()

	u, err := repo.Create(ctx, "sam@example.com", "hash", "Sam", "Doe", []string{user.RoleUser})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	_, err = repo.Create(ctx, "sam@example.com", "hash2", "Other", "Person", []string{user.RoleUser})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUsersRepo_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo()

	u, err := repo.Create(ctx, "sam@example.com", "hash", "Sam", "Doe", []string{user.RoleUser})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, u.ID, user.Update{FirstName: strptr("Samuel")})
	require.NoError(t, err)

	assert.Equal(t, "Samuel", updated.FirstName)
	// absent fields keep prior values
	assert.Equal(t, "sam@example.com", updated.Email)
	assert.Equal(t, "Doe", updated.LastName)
	assert.Equal(t, "hash", updated.PasswordHash)
}

func TestUsersRepo_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo()

	u, err := repo.Create(ctx, "sam@example.com", "hash", "", "", []string{user.RoleUser})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.ErrorIs(t, repo.Delete(ctx, u.ID), user.ErrNotFound)

	_, err = repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestPropertiesRepo_CreateAddsCreatorToAccessSet(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertiesRepo()

	p, err := repo.Create(ctx, property.CreatePropertyRequest{Name: strptr("Villa Rose")}, "creator-1")
	require.NoError(t, err)

	assert.Equal(t, "Villa Rose", p.Name)
	assert.Equal(t, []string{"creator-1"}, p.Users)
	// unfilled fields take the historical defaults
	assert.Equal(t, "default-url", p.URL)
	assert.Equal(t, "Unknown", p.City)
	assert.Nil(t, p.Area)
}

func TestPropertiesRepo_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertiesRepo()

	p, err := repo.Create(ctx, property.CreatePropertyRequest{
		Name: strptr("Villa Rose"),
		City: strptr("Paris"),
	}, "creator-1")
	require.NoError(t, err)

	updated, err := repo.Update(ctx, p.ID, property.UpdatePropertyRequest{City: strptr("Lyon")})
	require.NoError(t, err)

	assert.Equal(t, "Lyon", updated.City)
	assert.Equal(t, "Villa Rose", updated.Name)
	assert.Equal(t, p.URL, updated.URL)
	assert.Equal(t, []string{"creator-1"}, updated.Users)
}

func TestPropertiesRepo_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertiesRepo()

	p, err := repo.Create(ctx, property.CreatePropertyRequest{}, "creator-1")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, p.ID))
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), property.ErrNotFound)
}
