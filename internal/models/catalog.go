package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CoreValue names are not unique in the store; seeding dedupes by name.
type CoreValue struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null;index" json:"name"`
	Emoji       string    `gorm:"type:varchar(32)" json:"emoji"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *CoreValue) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CoreValue) TableName() string {
	return "core_values"
}

type Reward struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	PointsCost  int       `gorm:"not null" json:"points_cost"`
	ImageURL    *string   `gorm:"type:varchar(500)" json:"image_url"`
	Stock       int       `gorm:"default:0;not null" json:"stock"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Reward) BeforeSave(tx *gorm.DB) error {
	if r.PointsCost < 0 || r.Stock < 0 {
		return gorm.ErrInvalidData
	}
	return nil
}

func (Reward) TableName() string {
	return "rewards"
}

type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "PENDING"
	RedemptionApproved  RedemptionStatus = "APPROVED"
	RedemptionRejected  RedemptionStatus = "REJECTED"
	RedemptionFulfilled RedemptionStatus = "FULFILLED"
)

func (s RedemptionStatus) Valid() bool {
	switch s {
	case RedemptionPending, RedemptionApproved, RedemptionRejected, RedemptionFulfilled:
		return true
	}
	return false
}

// Redemption records points spent on a reward. Creating one does not touch
// the user's points balance.
type Redemption struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	RewardID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"reward_id"`
	Reward      *Reward          `gorm:"foreignKey:RewardID;constraint:OnDelete:CASCADE" json:"reward,omitempty"`
	PointsSpent int              `gorm:"not null" json:"points_spent"`
	Status      RedemptionStatus `gorm:"type:varchar(20);default:'PENDING';not null;index" json:"status"`
	CreatedAt   time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Redemption) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = RedemptionPending
	}
	return nil
}

func (r *Redemption) BeforeSave(tx *gorm.DB) error {
	if r.Status != "" && !r.Status.Valid() {
		return gorm.ErrInvalidData
	}
	return nil
}

func (Redemption) TableName() string {
	return "redemptions"
}
