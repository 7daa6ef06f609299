package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/pkg/errors"
	"gorm.io/gorm"
)

type CoreValueRepository struct {
	db *gorm.DB
}

func NewCoreValueRepository(db *gorm.DB) *CoreValueRepository {
	return &CoreValueRepository{db: db}
}

// ListCoreValues returns every core value, oldest first
func (r *CoreValueRepository) ListCoreValues(ctx context.Context) ([]models.CoreValue, error) {
	values := []models.CoreValue{}
	result := r.db.WithContext(ctx).Order("created_at ASC").Find(&values)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to list core values")
	}
	return values, nil
}

type RewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) CreateReward(ctx context.Context, reward *models.Reward) error {
	if err := r.db.WithContext(ctx).Create(reward).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create reward")
	}
	return nil
}

func (r *RewardRepository) GetRewardByID(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	var reward models.Reward
	if err := r.db.WithContext(ctx).First(&reward, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "reward")
	}
	return &reward, nil
}

// ListRewards pages through rewards, optionally filtered on is_active
func (r *RewardRepository) ListRewards(ctx context.Context, isActive *bool, params pagination.Params) (*pagination.Page[models.Reward], error) {
	params = params.WithDefaults("created_at", "desc", "")
	return pagination.Paginate[models.Reward](ctx, r.db, params, func(tx *gorm.DB) *gorm.DB {
		if isActive != nil {
			return tx.Where("is_active = ?", *isActive)
		}
		return tx
	})
}

func (r *RewardRepository) UpdateReward(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Reward, error) {
	result := r.db.WithContext(ctx).Model(&models.Reward{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update reward")
	}
	if result.RowsAffected == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "reward not found")
	}
	return r.GetRewardByID(ctx, id)
}

// DeleteReward removes a reward; its redemptions go with it
func (r *RewardRepository) DeleteReward(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reward_id = ?", id).Delete(&models.Redemption{}).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to delete redemptions")
		}
		result := tx.Where("id = ?", id).Delete(&models.Reward{})
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to delete reward")
		}
		if result.RowsAffected == 0 {
			return errors.New(errors.ErrCodeNotFound, "reward not found")
		}
		return nil
	})
	if err != nil {
		return passThrough(err, "failed to delete reward")
	}
	return nil
}

type RedemptionRepository struct {
	db *gorm.DB
}

func NewRedemptionRepository(db *gorm.DB) *RedemptionRepository {
	return &RedemptionRepository{db: db}
}

// CreateRedemption records a redemption. The user's points balance is not
// touched.
func (r *RedemptionRepository) CreateRedemption(ctx context.Context, redemption *models.Redemption) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.User{}, redemption.UserID, "user"); err != nil {
			return err
		}
		if err := requireRow(tx, &models.Reward{}, redemption.RewardID, "reward"); err != nil {
			return err
		}
		if err := tx.Omit("User", "Reward").Create(redemption).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create redemption")
		}
		return nil
	})
	if err != nil {
		return passThrough(err, "failed to create redemption")
	}
	return nil
}

func (r *RedemptionRepository) GetRedemptionByID(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
	var redemption models.Redemption
	result := r.db.WithContext(ctx).Preload("User").Preload("Reward").First(&redemption, "id = ?", id)
	if result.Error != nil {
		return nil, lookupError(result.Error, "redemption")
	}
	return &redemption, nil
}

type RedemptionFilter struct {
	UserID   *uuid.UUID
	RewardID *uuid.UUID
	Status   models.RedemptionStatus
}

func (f RedemptionFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		tx = tx.Where("user_id = ?", *f.UserID)
	}
	if f.RewardID != nil {
		tx = tx.Where("reward_id = ?", *f.RewardID)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	return tx
}

func (r *RedemptionRepository) ListRedemptions(ctx context.Context, filter RedemptionFilter, params pagination.Params) (*pagination.Page[models.Redemption], error) {
	params = params.WithDefaults("created_at", "desc", "user,reward")
	return pagination.Paginate[models.Redemption](ctx, r.db, params, filter.scope)
}

func (r *RedemptionRepository) UpdateRedemption(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Redemption, error) {
	result := r.db.WithContext(ctx).Model(&models.Redemption{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update redemption")
	}
	if result.RowsAffected == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "redemption not found")
	}
	return r.GetRedemptionByID(ctx, id)
}

func (r *RedemptionRepository) DeleteRedemption(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Redemption{})
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to delete redemption")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "redemption not found")
	}
	return nil
}
