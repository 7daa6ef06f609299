package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User carries two independent ledgers: GivingBudget is spent when sending
// kudos, PointsBalance grows when receiving them.
type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserName        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"user_name"`
	Email           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"type:varchar(255)" json:"-"`
	FirstName       string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName        string     `gorm:"type:varchar(100)" json:"last_name"`
	Avatar          string     `gorm:"type:varchar(500)" json:"avatar"`
	Department      string     `gorm:"type:varchar(100)" json:"department"`
	PointsBalance   int        `gorm:"default:0;not null" json:"points_balance"`
	GivingBudget    int        `gorm:"default:0;not null" json:"giving_budget"`
	LastBudgetReset *time.Time `json:"last_budget_reset"`
	Role            Role       `gorm:"type:varchar(10);default:'USER';not null" json:"role"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// BeforeSave also runs for column updates issued through Model(&User{}),
// so only fields that are valid at their zero value are checked here.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role != "" && !u.Role.Valid() {
		return gorm.ErrInvalidData
	}
	return nil
}

// IsAdmin reports whether the user may run privileged operations.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
