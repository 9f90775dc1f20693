package seeder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-backend/models"
	"hrms-backend/pkg/password"
	"hrms-backend/repository/memory"
)

func TestSeedDepartmentsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewDepartments()
	require.NoError(t, repo.CreateDepartment(ctx, &models.Department{Name: "Finance", Description: "Existing"}))

	require.NoError(t, SeedDepartments(ctx, repo))
	require.NoError(t, SeedDepartments(ctx, repo))

	all, err := repo.GetAllDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(defaultDepartments))

	finance, err := repo.FindDepartmentByName(ctx, "Finance")
	require.NoError(t, err)
	assert.Equal(t, "Existing", finance.Description)
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUsers()

	require.NoError(t, SeedAdmin(ctx, repo, "admin@example.com", "Admin12345"))
	require.NoError(t, SeedAdmin(ctx, repo, "admin@example.com", "Different123"))

	admin, err := repo.FindUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.True(t, password.CheckPasswordHash("Admin12345", admin.Password))

	_, total, err := repo.GetAllUsers(ctx, models.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
