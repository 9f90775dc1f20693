package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
	"hrms-backend/repository/memory"
)

// racingBalances lets a competing writer bump the stored version before each of the first races writes.
type racingBalances struct {
	*memory.LeaveBalances
	races    int
	replaces int
}

func (r *racingBalances) Replace(ctx context.Context, balance *models.LeaveBalance) error {
	r.replaces++
	if r.races > 0 {
		r.races--
		current, err := r.LeaveBalances.Get(ctx, balance.EmployeeID, balance.Year)
		if err != nil {
			return err
		}
		current.Find(models.LeaveSick).Used++
		if err := r.LeaveBalances.Replace(ctx, current); err != nil {
			return err
		}
	}
	return r.LeaveBalances.Replace(ctx, balance)
}

func reservePending(days float64) func(*models.LeaveBalance) error {
	return func(b *models.LeaveBalance) error {
		b.Find(models.LeaveAnnual).Pending += days
		return nil
	}
}

func TestUpdateBalanceWithRetryCreatesBalance(t *testing.T) {
	repo := memory.NewLeaveBalances()
	employeeID := primitive.NewObjectID()

	balance, err := repository.UpdateBalanceWithRetry(context.Background(), repo, employeeID, 2025, reservePending(2))
	require.NoError(t, err)
	assert.Equal(t, int64(1), balance.Version)

	stored, err := repo.Get(context.Background(), employeeID, 2025)
	require.NoError(t, err)
	annual := stored.Find(models.LeaveAnnual)
	assert.Equal(t, 15.0, annual.Total)
	assert.Equal(t, 2.0, annual.Pending)
	assert.Equal(t, 13.0, annual.Available())
}

func TestUpdateBalanceWithRetryReappliesAfterLostRace(t *testing.T) {
	repo := &racingBalances{LeaveBalances: memory.NewLeaveBalances(), races: repository.BalanceRetries - 1}
	employeeID := primitive.NewObjectID()

	_, err := repository.UpdateBalanceWithRetry(context.Background(), repo, employeeID, 2025, reservePending(3))
	require.NoError(t, err)
	assert.Equal(t, repository.BalanceRetries, repo.replaces)

	stored, err := repo.Get(context.Background(), employeeID, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3.0, stored.Find(models.LeaveAnnual).Pending)
	assert.Equal(t, float64(repository.BalanceRetries-1), stored.Find(models.LeaveSick).Used)
}

func TestUpdateBalanceWithRetryGivesUp(t *testing.T) {
	repo := &racingBalances{LeaveBalances: memory.NewLeaveBalances(), races: repository.BalanceRetries}
	employeeID := primitive.NewObjectID()

	_, err := repository.UpdateBalanceWithRetry(context.Background(), repo, employeeID, 2025, reservePending(1))
	assert.ErrorIs(t, err, repository.ErrConflict)

	stored, err := repo.Get(context.Background(), employeeID, 2025)
	require.NoError(t, err)
	assert.Zero(t, stored.Find(models.LeaveAnnual).Pending)
}

func TestUpdateBalanceWithRetryMutateErrorSkipsWrite(t *testing.T) {
	repo := &racingBalances{LeaveBalances: memory.NewLeaveBalances()}
	insufficient := errors.New("insufficient balance")

	_, err := repository.UpdateBalanceWithRetry(context.Background(), repo, primitive.NewObjectID(), 2025, func(*models.LeaveBalance) error {
		return insufficient
	})
	assert.ErrorIs(t, err, insufficient)
	assert.Zero(t, repo.replaces)
}
