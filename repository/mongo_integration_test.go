package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/config"
	"hrms-backend/models"
	"hrms-backend/repository"
)

// Runs against a live server: RUN_MONGO_INTEGRATION=true MONGOSTRING=mongodb://localhost:27017 go test ./repository/
func TestMongoRepositories(t *testing.T) {
	if os.Getenv("RUN_MONGO_INTEGRATION") != "true" {
		t.Skip("set RUN_MONGO_INTEGRATION=true to run against MongoDB")
	}

	dbName := "hrms_test_" + primitive.NewObjectID().Hex()
	require.NoError(t, config.MongoConnect(os.Getenv("MONGOSTRING"), dbName))
	t.Cleanup(func() {
		_ = config.MongoConn.Database(dbName).Drop(context.Background())
		config.DisconnectDB()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, config.InitDatabase(ctx))

	t.Run("users", func(t *testing.T) {
		users := repository.NewUserRepository()
		user := &models.User{Name: "Mongo User", Email: " Mongo@Example.com ", Role: models.RoleEmployee, IsActive: true}
		require.NoError(t, users.CreateUser(ctx, user))

		found, err := users.FindUserByEmail(ctx, "mongo@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		err = users.CreateUser(ctx, &models.User{Name: "Twin", Email: "mongo@example.com", Role: models.RoleEmployee})
		assert.ErrorIs(t, err, repository.ErrDuplicate)

		locked, err := users.RecordFailedLogin(ctx, user.ID, 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, locked.IsLocked(time.Now()))
		require.NoError(t, users.ClearLockout(ctx, user.ID))

		require.NoError(t, users.DeleteUser(ctx, user.ID))
		_, err = users.FindUserByID(ctx, user.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("leave balances", func(t *testing.T) {
		balances := repository.NewLeaveBalanceRepository()
		employeeID := primitive.NewObjectID()

		first, err := balances.GetOrCreate(ctx, employeeID, 2025)
		require.NoError(t, err)
		again, err := balances.GetOrCreate(ctx, employeeID, 2025)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)

		first.Find(models.LeaveAnnual).Pending = 2
		require.NoError(t, balances.Replace(ctx, first))
		again.Find(models.LeaveAnnual).Pending = 5
		assert.ErrorIs(t, balances.Replace(ctx, again), repository.ErrConflict)

		stored, err := repository.UpdateBalanceWithRetry(ctx, balances, employeeID, 2025, func(b *models.LeaveBalance) error {
			b.Find(models.LeaveAnnual).Pending++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3.0, stored.Find(models.LeaveAnnual).Pending)
		assert.Equal(t, int64(2), stored.Version)
	})
}
