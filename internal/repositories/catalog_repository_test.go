package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/internal/testutil"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCoreValues_OldestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"Teamwork", "Ownership", "Teamwork"} {
		cv := &models.CoreValue{Name: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, db.Create(cv).Error)
	}

	values, err := NewCoreValueRepository(db).ListCoreValues(ctx)
	require.NoError(t, err)
	require.Len(t, values, 3)
	assert.Equal(t, "Teamwork", values[0].Name)
	assert.Equal(t, "Ownership", values[1].Name)
}

func TestRewardRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRewardRepository(db)
	ctx := context.Background()

	active := testutil.CreateReward(t, db, "Hoodie", 50, true)
	testutil.CreateReward(t, db, "Old Mug", 10, false)

	yes := true
	page, err := repo.ListRewards(ctx, &yes, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, active.ID, page.Items[0].ID)

	page, err = repo.ListRewards(ctx, nil, pagination.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Info.TotalResults)

	updated, err := repo.UpdateReward(ctx, active.ID, map[string]interface{}{"is_active": false, "stock": 3})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 3, updated.Stock)

	require.NoError(t, repo.DeleteReward(ctx, active.ID))
	_, err = repo.GetRewardByID(ctx, active.ID)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	assert.True(t, errors.Is(repo.DeleteReward(ctx, active.ID), errors.ErrCodeNotFound))
}

func TestRedemptionRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRedemptionRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "spender", 200)
	require.NoError(t, db.Model(user).UpdateColumn("points_balance", 500).Error)
	reward := testutil.CreateReward(t, db, "Hoodie", 50, true)

	redemption := &models.Redemption{UserID: user.ID, RewardID: reward.ID, PointsSpent: 50}
	require.NoError(t, repo.CreateRedemption(ctx, redemption))
	assert.Equal(t, models.RedemptionPending, redemption.Status)

	// Redeeming does not move points.
	assert.Equal(t, 500, balances(t, db, user.ID).PointsBalance)

	got, err := repo.GetRedemptionByID(ctx, redemption.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	require.NotNil(t, got.Reward)
	assert.Equal(t, "Hoodie", got.Reward.Name)

	page, err := repo.ListRedemptions(ctx, RedemptionFilter{Status: models.RedemptionPending}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.NotNil(t, page.Items[0].User)
	assert.NotNil(t, page.Items[0].Reward)

	page, err = repo.ListRedemptions(ctx, RedemptionFilter{Status: models.RedemptionApproved}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	updated, err := repo.UpdateRedemption(ctx, redemption.ID, map[string]interface{}{"status": models.RedemptionApproved})
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionApproved, updated.Status)

	require.NoError(t, repo.DeleteRedemption(ctx, redemption.ID))
	assert.True(t, errors.Is(repo.DeleteRedemption(ctx, redemption.ID), errors.ErrCodeNotFound))
}

func TestCreateRedemption_UnknownReward(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "spender", 200)

	err := NewRedemptionRepository(db).CreateRedemption(context.Background(), &models.Redemption{
		UserID:      user.ID,
		RewardID:    uuid.New(),
		PointsSpent: 10,
	})
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice", 20)
	testutil.CreateUser(t, db, "bob", 0)

	byLogin, err := repo.GetUserByLogin(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byLogin.ID)

	_, err = repo.GetUserByLogin(ctx, "carol")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	updated, err := repo.UpdateUser(ctx, alice.ID, map[string]interface{}{"department": "Platform", "role": models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Platform", updated.Department)
	assert.True(t, updated.IsAdmin())

	_, err = repo.UpdateUser(ctx, uuid.New(), map[string]interface{}{"department": "x"})
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	n, err := repo.ResetGivingBudgets(ctx, 200, at)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	page, err := repo.ListUsers(ctx, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, u := range page.Items {
		assert.Equal(t, 200, u.GivingBudget)
		require.NotNil(t, u.LastBudgetReset)
		assert.True(t, at.Equal(*u.LastBudgetReset))
	}
}
