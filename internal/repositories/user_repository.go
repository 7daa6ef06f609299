package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to create user")
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).First(&user, "id = ?", id)
	if result.Error != nil {
		return nil, lookupError(result.Error, "user")
	}
	return &user, nil
}

// GetUserByLogin finds a user by user name or email
func (r *UserRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	result := r.db.WithContext(ctx).Where("user_name = ? OR email = ?", login, login).First(&user)
	if result.Error != nil {
		return nil, lookupError(result.Error, "user")
	}
	return &user, nil
}

func (r *UserRepository) ListUsers(ctx context.Context, params pagination.Params) (*pagination.Page[models.User], error) {
	params = params.WithDefaults("created_at", "desc", "")
	return pagination.Paginate[models.User](ctx, r.db, params)
}

// UpdateUser applies column updates and returns the stored user
func (r *UserRepository) UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return r.GetUserByID(ctx, id)
}

// ResetGivingBudgets sets every user's giving budget and stamps the reset
// time. It returns the number of users touched.
func (r *UserRepository) ResetGivingBudgets(ctx context.Context, budget int, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&models.User{}).
		UpdateColumns(map[string]interface{}{
			"giving_budget":     budget,
			"last_budget_reset": at,
		})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to reset giving budgets")
	}
	return result.RowsAffected, nil
}
