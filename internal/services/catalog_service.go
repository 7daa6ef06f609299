package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/internal/repositories"
	"github.com/mroshb/kudos/internal/security"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/mroshb/kudos/pkg/utils"
)

// CatalogService covers the plain CRUD resources: users, core values,
// rewards and redemptions.
type CatalogService struct {
	users       *repositories.UserRepository
	coreValues  *repositories.CoreValueRepository
	rewards     *repositories.RewardRepository
	redemptions *repositories.RedemptionRepository
}

func NewCatalogService(
	users *repositories.UserRepository,
	coreValues *repositories.CoreValueRepository,
	rewards *repositories.RewardRepository,
	redemptions *repositories.RedemptionRepository,
) *CatalogService {
	return &CatalogService{
		users:       users,
		coreValues:  coreValues,
		rewards:     rewards,
		redemptions: redemptions,
	}
}

func (s *CatalogService) ListUsers(ctx context.Context, params pagination.Params) (*pagination.Page[models.User], error) {
	return s.users.ListUsers(ctx, params)
}

func (s *CatalogService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

type UpdateUserInput struct {
	GivingBudget    utils.Optional[int]    `json:"giving_budget"`
	PointsBalance   utils.Optional[int]    `json:"points_balance"`
	FirstName       utils.Optional[string] `json:"first_name"`
	LastName        utils.Optional[string] `json:"last_name"`
	Avatar          utils.Optional[string] `json:"avatar"`
	Department      utils.Optional[string] `json:"department"`
	Role            utils.Optional[string] `json:"role"`
	LastBudgetReset utils.Optional[string] `json:"last_budget_reset"`
}

func (s *CatalogService) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	updates := map[string]interface{}{}

	if in.GivingBudget.Present() {
		updates["giving_budget"] = in.GivingBudget.Value
	}
	if in.PointsBalance.Present() {
		updates["points_balance"] = in.PointsBalance.Value
	}
	for column, field := range map[string]utils.Optional[string]{
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"avatar":     in.Avatar,
		"department": in.Department,
	} {
		if field.Present() {
			updates[column] = security.SanitizeText(field.Value)
		}
	}
	if in.Role.Present() {
		role := models.Role(strings.ToUpper(strings.TrimSpace(in.Role.Value)))
		if !role.Valid() {
			return nil, errors.New(errors.ErrCodeValidation, "role must be ADMIN or USER")
		}
		updates["role"] = role
	}
	if in.LastBudgetReset.Set {
		if in.LastBudgetReset.Null {
			updates["last_budget_reset"] = nil
		} else {
			at, err := parseTimestamp(in.LastBudgetReset.Value)
			if err != nil {
				return nil, errors.New(errors.ErrCodeValidation, "last_budget_reset must be an RFC 3339 timestamp")
			}
			updates["last_budget_reset"] = at
		}
	}

	if len(updates) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "No valid fields to update")
	}
	return s.users.UpdateUser(ctx, id, updates)
}

func (s *CatalogService) ListCoreValues(ctx context.Context) ([]models.CoreValue, error) {
	return s.coreValues.ListCoreValues(ctx)
}

type CreateRewardInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PointsCost  *int    `json:"points_cost"`
	ImageURL    *string `json:"image_url"`
	Stock       *int    `json:"stock"`
	IsActive    *bool   `json:"is_active"`
}

func (s *CatalogService) CreateReward(ctx context.Context, in CreateRewardInput) (*models.Reward, error) {
	name := security.SanitizeText(in.Name)
	if name == "" || in.PointsCost == nil {
		return nil, errors.New(errors.ErrCodeValidation, "name and points_cost are required")
	}
	if *in.PointsCost < 0 || (in.Stock != nil && *in.Stock < 0) {
		return nil, errors.New(errors.ErrCodeValidation, "points_cost and stock must not be negative")
	}

	reward := &models.Reward{
		Name:        name,
		Description: security.SanitizeOptional(in.Description),
		PointsCost:  *in.PointsCost,
		ImageURL:    in.ImageURL,
		IsActive:    true,
	}
	if in.Stock != nil {
		reward.Stock = *in.Stock
	}
	if in.IsActive != nil {
		reward.IsActive = *in.IsActive
	}

	if err := s.rewards.CreateReward(ctx, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

func (s *CatalogService) GetReward(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	return s.rewards.GetRewardByID(ctx, id)
}

func (s *CatalogService) ListRewards(ctx context.Context, isActive *bool, params pagination.Params) (*pagination.Page[models.Reward], error) {
	return s.rewards.ListRewards(ctx, isActive, params)
}

type UpdateRewardInput struct {
	Name        utils.Optional[string] `json:"name"`
	Description utils.Optional[string] `json:"description"`
	PointsCost  utils.Optional[int]    `json:"points_cost"`
	ImageURL    utils.Optional[string] `json:"image_url"`
	Stock       utils.Optional[int]    `json:"stock"`
	IsActive    utils.Optional[bool]   `json:"is_active"`
}

func (s *CatalogService) UpdateReward(ctx context.Context, id uuid.UUID, in UpdateRewardInput) (*models.Reward, error) {
	updates := map[string]interface{}{}

	if in.Name.Present() {
		name := security.SanitizeText(in.Name.Value)
		if name == "" {
			return nil, errors.New(errors.ErrCodeValidation, "name must not be empty")
		}
		updates["name"] = name
	}
	if in.Description.Set {
		updates["description"] = nullableText(in.Description)
	}
	if in.ImageURL.Set {
		if in.ImageURL.Null {
			updates["image_url"] = nil
		} else {
			updates["image_url"] = in.ImageURL.Value
		}
	}
	if in.PointsCost.Present() {
		if in.PointsCost.Value < 0 {
			return nil, errors.New(errors.ErrCodeValidation, "points_cost must not be negative")
		}
		updates["points_cost"] = in.PointsCost.Value
	}
	if in.Stock.Present() {
		if in.Stock.Value < 0 {
			return nil, errors.New(errors.ErrCodeValidation, "stock must not be negative")
		}
		updates["stock"] = in.Stock.Value
	}
	if in.IsActive.Present() {
		updates["is_active"] = in.IsActive.Value
	}

	if len(updates) == 0 {
		return s.rewards.GetRewardByID(ctx, id)
	}
	return s.rewards.UpdateReward(ctx, id, updates)
}

func (s *CatalogService) DeleteReward(ctx context.Context, id uuid.UUID) error {
	return s.rewards.DeleteReward(ctx, id)
}

type CreateRedemptionInput struct {
	UserID      *uuid.UUID `json:"user_id"`
	RewardID    *uuid.UUID `json:"reward_id"`
	PointsSpent *int       `json:"points_spent"`
	Status      string     `json:"status"`
}

// CreateRedemption records a redemption without touching any balance.
func (s *CatalogService) CreateRedemption(ctx context.Context, in CreateRedemptionInput) (*models.Redemption, error) {
	if in.UserID == nil || in.RewardID == nil || in.PointsSpent == nil {
		return nil, errors.New(errors.ErrCodeValidation, "user_id, reward_id and points_spent are required")
	}

	status := models.RedemptionStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if status != "" && !status.Valid() {
		return nil, errors.New(errors.ErrCodeValidation, "invalid status")
	}

	redemption := &models.Redemption{
		UserID:      *in.UserID,
		RewardID:    *in.RewardID,
		PointsSpent: *in.PointsSpent,
		Status:      status,
	}
	if err := s.redemptions.CreateRedemption(ctx, redemption); err != nil {
		return nil, err
	}
	return s.redemptions.GetRedemptionByID(ctx, redemption.ID)
}

func (s *CatalogService) GetRedemption(ctx context.Context, id uuid.UUID) (*models.Redemption, error) {
	return s.redemptions.GetRedemptionByID(ctx, id)
}

func (s *CatalogService) ListRedemptions(ctx context.Context, filter repositories.RedemptionFilter, params pagination.Params) (*pagination.Page[models.Redemption], error) {
	if filter.Status != "" {
		filter.Status = models.RedemptionStatus(strings.ToUpper(string(filter.Status)))
		if !filter.Status.Valid() {
			return nil, errors.New(errors.ErrCodeValidation, "invalid status")
		}
	}
	return s.redemptions.ListRedemptions(ctx, filter, params)
}

type UpdateRedemptionInput struct {
	PointsSpent utils.Optional[int]    `json:"points_spent"`
	Status      utils.Optional[string] `json:"status"`
}

func (s *CatalogService) UpdateRedemption(ctx context.Context, id uuid.UUID, in UpdateRedemptionInput) (*models.Redemption, error) {
	updates := map[string]interface{}{}

	if in.PointsSpent.Present() {
		updates["points_spent"] = in.PointsSpent.Value
	}
	if in.Status.Present() {
		status := models.RedemptionStatus(strings.ToUpper(strings.TrimSpace(in.Status.Value)))
		if !status.Valid() {
			return nil, errors.New(errors.ErrCodeValidation, "invalid status")
		}
		updates["status"] = status
	}

	if len(updates) == 0 {
		return s.redemptions.GetRedemptionByID(ctx, id)
	}
	return s.redemptions.UpdateRedemption(ctx, id, updates)
}

func (s *CatalogService) DeleteRedemption(ctx context.Context, id uuid.UUID) error {
	return s.redemptions.DeleteRedemption(ctx, id)
}

func nullableText(o utils.Optional[string]) interface{} {
	if o.Null {
		return nil
	}
	return security.SanitizeText(o.Value)
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(value))
}
