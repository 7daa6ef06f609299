package repositories

import (
	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/pkg/errors"
	"gorm.io/gorm"
)

// Ledger moves points inside a caller-owned transaction.
type Ledger interface {
	DebitGivingBudget(tx *gorm.DB, userID uuid.UUID, points int) error
	CreditPointsBalance(tx *gorm.DB, userID uuid.UUID, points int) error
}

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// DebitGivingBudget decrements the sender's giving budget in place. The
// budget is not checked first and may go negative.
func (r *LedgerRepository) DebitGivingBudget(tx *gorm.DB, userID uuid.UUID, points int) error {
	return adjust(tx, userID, "giving_budget", -points, "sender")
}

// CreditPointsBalance increments the receiver's points balance in place.
func (r *LedgerRepository) CreditPointsBalance(tx *gorm.DB, userID uuid.UUID, points int) error {
	return adjust(tx, userID, "points_balance", points, "receiver")
}

func adjust(tx *gorm.DB, userID uuid.UUID, column string, delta int, role string) error {
	result := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update "+column)
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, role+" not found")
	}
	return nil
}
