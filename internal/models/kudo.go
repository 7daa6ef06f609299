package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kudo is a point transfer from Sender to Receiver. It is created in the same
// transaction as the two balance adjustments and owned by its sender.
type Kudo struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"sender_id"`
	Sender      *User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	ReceiverID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"receiver_id"`
	Receiver    *User      `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"receiver,omitempty"`
	Points      int        `gorm:"not null" json:"points"`
	Description *string    `gorm:"type:text" json:"description"`
	CoreValueID *uuid.UUID `gorm:"type:uuid;index" json:"core_value_id"`
	CoreValue   *CoreValue `gorm:"foreignKey:CoreValueID;constraint:OnDelete:SET NULL" json:"core_value,omitempty"`
	Reactions   []Reaction `gorm:"foreignKey:KudoID;constraint:OnDelete:CASCADE" json:"reactions"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (k *Kudo) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

func (Kudo) TableName() string {
	return "kudos"
}

// Reaction rows are not unique per (kudo, user, emoji); removal deletes every
// matching row.
type Reaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	KudoID    uuid.UUID `gorm:"type:uuid;not null;index" json:"kudo_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Emoji     string    `gorm:"type:varchar(32);not null" json:"emoji"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (Reaction) TableName() string {
	return "reactions"
}
