package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/internal/repositories"
	"github.com/mroshb/kudos/internal/testutil"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogService(t *testing.T) (*CatalogService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewCatalogService(
		repositories.NewUserRepository(db),
		repositories.NewCoreValueRepository(db),
		repositories.NewRewardRepository(db),
		repositories.NewRedemptionRepository(db),
	), db
}

func TestUpdateUser(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "alice", 200)

	t.Run("No fields", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{})
		assert.True(t, errors.Is(err, errors.ErrCodeValidation))
	})

	t.Run("Bad role", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{Role: some("OWNER")})
		assert.True(t, errors.Is(err, errors.ErrCodeValidation))
	})

	t.Run("Bad timestamp", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{LastBudgetReset: some("yesterday")})
		assert.True(t, errors.Is(err, errors.ErrCodeValidation))
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, uuid.New(), UpdateUserInput{Department: some("Ops")})
		assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	})

	t.Run("Allowed fields", func(t *testing.T) {
		updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{
			GivingBudget:    some(500),
			Role:            some("admin"),
			Department:      some("Design"),
			LastName:        some("O'Brien & Sons"),
			LastBudgetReset: some("2025-02-01T00:00:00Z"),
		})
		require.NoError(t, err)
		assert.Equal(t, 500, updated.GivingBudget)
		assert.Equal(t, models.RoleAdmin, updated.Role)
		assert.Equal(t, "Design", updated.Department)
		assert.Equal(t, "O'Brien & Sons", updated.LastName)
		require.NotNil(t, updated.LastBudgetReset)
		assert.True(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).Equal(*updated.LastBudgetReset))
	})
}

func TestCreateReward(t *testing.T) {
	svc, _ := newCatalogService(t)
	ctx := context.Background()

	_, err := svc.CreateReward(ctx, CreateRewardInput{Name: "Mug"})
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	_, err = svc.CreateReward(ctx, CreateRewardInput{PointsCost: ptr(10)})
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	_, err = svc.CreateReward(ctx, CreateRewardInput{Name: "Mug", PointsCost: ptr(-1)})
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	reward, err := svc.CreateReward(ctx, CreateRewardInput{Name: "Mug", PointsCost: ptr(10)})
	require.NoError(t, err)
	assert.True(t, reward.IsActive)
	assert.Zero(t, reward.Stock)

	inactive, err := svc.CreateReward(ctx, CreateRewardInput{Name: "Poster", PointsCost: ptr(5), IsActive: ptr(false), Stock: ptr(3)})
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	active := true
	page, err := svc.ListRewards(ctx, &active, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Mug", page.Items[0].Name)

	updated, err := svc.UpdateReward(ctx, reward.ID, UpdateRewardInput{Description: some("Ceramic"), Stock: some(7)})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Ceramic", *updated.Description)
	assert.Equal(t, 7, updated.Stock)

	_, err = svc.UpdateReward(ctx, reward.ID, UpdateRewardInput{Stock: some(-2)})
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestRedemptions(t *testing.T) {
	svc, db := newCatalogService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "alice", 200)
	reward := testutil.CreateReward(t, db, "Hoodie", 50, true)

	_, err := svc.CreateRedemption(ctx, CreateRedemptionInput{UserID: &user.ID, RewardID: &reward.ID})
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	_, err = svc.CreateRedemption(ctx, CreateRedemptionInput{UserID: &user.ID, RewardID: &reward.ID, PointsSpent: ptr(50), Status: "lost"})
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	redemption, err := svc.CreateRedemption(ctx, CreateRedemptionInput{UserID: &user.ID, RewardID: &reward.ID, PointsSpent: ptr(50)})
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionPending, redemption.Status)
	require.NotNil(t, redemption.Reward)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Zero(t, stored.PointsBalance)

	updated, err := svc.UpdateRedemption(ctx, redemption.ID, UpdateRedemptionInput{Status: some("fulfilled")})
	require.NoError(t, err)
	assert.Equal(t, models.RedemptionFulfilled, updated.Status)

	_, err = svc.ListRedemptions(ctx, repositories.RedemptionFilter{Status: "bogus"}, pagination.Params{})
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	page, err := svc.ListRedemptions(ctx, repositories.RedemptionFilter{UserID: &user.ID, Status: "fulfilled"}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestResetGivingBudgets(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateUser(t, db, "spent", 0)
	testutil.CreateUser(t, db, "saver", 180)

	svc := NewBudgetService(repositories.NewUserRepository(db), 200)
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	n, err := svc.ResetGivingBudgets(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		assert.Equal(t, 200, u.GivingBudget)
		require.NotNil(t, u.LastBudgetReset)
		assert.True(t, fixed.Equal(*u.LastBudgetReset))
	}
}
