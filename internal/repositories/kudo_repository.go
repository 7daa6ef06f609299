package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/pkg/errors"
	"gorm.io/gorm"
)

type KudoRepository struct {
	db     *gorm.DB
	ledger Ledger
}

func NewKudoRepository(db *gorm.DB, ledger Ledger) *KudoRepository {
	return &KudoRepository{db: db, ledger: ledger}
}

// NewKudo is the input of a transfer.
type NewKudo struct {
	SenderID    uuid.UUID
	ReceiverID  uuid.UUID
	Points      int
	Description *string
	CoreValueID *uuid.UUID
}

// CreateKudo inserts the kudo, debits the sender's giving budget and credits
// the receiver's points balance in one transaction. Any failure rolls all
// three back.
func (r *KudoRepository) CreateKudo(ctx context.Context, in NewKudo) (*models.Kudo, error) {
	kudo := &models.Kudo{
		SenderID:    in.SenderID,
		ReceiverID:  in.ReceiverID,
		Points:      in.Points,
		Description: in.Description,
		CoreValueID: in.CoreValueID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.User{}, in.ReceiverID, "receiver"); err != nil {
			return err
		}
		if in.CoreValueID != nil {
			if err := requireRow(tx, &models.CoreValue{}, *in.CoreValueID, "core value"); err != nil {
				return err
			}
		}

		if err := tx.Omit("Sender", "Receiver", "CoreValue", "Reactions").Create(kudo).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create kudo")
		}
		if err := r.ledger.DebitGivingBudget(tx, in.SenderID, in.Points); err != nil {
			return err
		}
		return r.ledger.CreditPointsBalance(tx, in.ReceiverID, in.Points)
	})
	if err != nil {
		return nil, passThrough(err, "failed to create kudo")
	}

	kudo.Reactions = []models.Reaction{}
	return kudo, nil
}

func requireRow(tx *gorm.DB, model interface{}, id uuid.UUID, entity string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to look up "+entity)
	}
	if count == 0 {
		return errors.New(errors.ErrCodeNotFound, entity+" not found")
	}
	return nil
}

// GetKudoByID retrieves a kudo with its reactions
func (r *KudoRepository) GetKudoByID(ctx context.Context, id uuid.UUID) (*models.Kudo, error) {
	var kudo models.Kudo
	result := r.db.WithContext(ctx).Preload("Reactions").First(&kudo, "id = ?", id)
	if result.Error != nil {
		return nil, lookupError(result.Error, "kudo")
	}
	return &kudo, nil
}

type KudoFilter struct {
	SenderID   *uuid.UUID
	ReceiverID *uuid.UUID
}

func (f KudoFilter) scope(tx *gorm.DB) *gorm.DB {
	if f.SenderID != nil {
		tx = tx.Where("sender_id = ?", *f.SenderID)
	}
	if f.ReceiverID != nil {
		tx = tx.Where("receiver_id = ?", *f.ReceiverID)
	}
	return tx
}

// ListKudos pages through kudos, newest first with reactions unless the
// caller asks otherwise.
func (r *KudoRepository) ListKudos(ctx context.Context, filter KudoFilter, params pagination.Params) (*pagination.Page[models.Kudo], error) {
	params = params.WithDefaults("created_at", "desc", "reactions")
	return pagination.Paginate[models.Kudo](ctx, r.db, params, filter.scope)
}

// UpdateKudo applies column updates. Balances already transferred are left
// untouched.
func (r *KudoRepository) UpdateKudo(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.Kudo, error) {
	if len(updates) > 0 {
		if cv, ok := updates["core_value_id"].(*uuid.UUID); ok && cv != nil {
			if err := requireRow(r.db.WithContext(ctx), &models.CoreValue{}, *cv, "core value"); err != nil {
				return nil, err
			}
		}

		result := r.db.WithContext(ctx).Model(&models.Kudo{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to update kudo")
		}
		if result.RowsAffected == 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "kudo not found")
		}
	}
	return r.GetKudoByID(ctx, id)
}

// DeleteKudo removes the kudo and its reactions. Balances are not reversed.
func (r *KudoRepository) DeleteKudo(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("kudo_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return errors.Wrap(err, errors.ErrCodeInternalError, "failed to delete reactions")
		}
		result := tx.Where("id = ?", id).Delete(&models.Kudo{})
		if result.Error != nil {
			return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to delete kudo")
		}
		if result.RowsAffected == 0 {
			return errors.New(errors.ErrCodeNotFound, "kudo not found")
		}
		return nil
	})
	if err != nil {
		return passThrough(err, "failed to delete kudo")
	}
	return nil
}

// AddReaction inserts a reaction row. Repeating the same triple adds another
// row.
func (r *KudoRepository) AddReaction(ctx context.Context, kudoID, userID uuid.UUID, emoji string) (*models.Reaction, error) {
	reaction := &models.Reaction{KudoID: kudoID, UserID: userID, Emoji: emoji}
	if err := r.db.WithContext(ctx).Omit("User").Create(reaction).Error; err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to add reaction")
	}
	return reaction, nil
}

// RemoveReactions deletes every row matching the triple and reports how many
// were removed.
func (r *KudoRepository) RemoveReactions(ctx context.Context, kudoID, userID uuid.UUID, emoji string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("kudo_id = ? AND user_id = ? AND emoji = ?", kudoID, userID, emoji).
		Delete(&models.Reaction{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to remove reaction")
	}
	return result.RowsAffected, nil
}
