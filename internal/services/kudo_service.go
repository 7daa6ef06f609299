package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/feed"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/internal/repositories"
	"github.com/mroshb/kudos/internal/security"
	"github.com/mroshb/kudos/pkg/errors"
	"github.com/mroshb/kudos/pkg/logger"
	"github.com/mroshb/kudos/pkg/utils"
)

type KudoService struct {
	repo *repositories.KudoRepository
}

func NewKudoService(repo *repositories.KudoRepository) *KudoService {
	return &KudoService{repo: repo}
}

type CreateKudoInput struct {
	ReceiverID  *uuid.UUID `json:"receiver_id"`
	Points      *int       `json:"points"`
	Description *string    `json:"description"`
	CoreValueID *uuid.UUID `json:"core_value_id"`
}

// UpdateKudoInput carries only the mutable fields. A null core_value_id or
// description clears it.
type UpdateKudoInput struct {
	Points      utils.Optional[int]       `json:"points"`
	Description utils.Optional[string]    `json:"description"`
	CoreValueID utils.Optional[uuid.UUID] `json:"core_value_id"`
}

// CreateKudo transfers points from sender to receiver and queues
// kudo:created for the feed once the transaction has committed.
func (s *KudoService) CreateKudo(ctx context.Context, senderID uuid.UUID, in CreateKudoInput) (*models.Kudo, error) {
	if in.ReceiverID == nil || in.Points == nil {
		return nil, errors.New(errors.ErrCodeValidation, "receiver_id and points are required")
	}

	kudo, err := s.repo.CreateKudo(ctx, repositories.NewKudo{
		SenderID:    senderID,
		ReceiverID:  *in.ReceiverID,
		Points:      *in.Points,
		Description: security.SanitizeOptional(in.Description),
		CoreValueID: in.CoreValueID,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("Kudo created", "kudo_id", kudo.ID, "sender_id", senderID, "receiver_id", kudo.ReceiverID, "points", kudo.Points)
	feed.Enqueue(ctx, feed.Event{Name: feed.KudoCreated, Data: kudo})
	return kudo, nil
}

func (s *KudoService) GetKudo(ctx context.Context, id uuid.UUID) (*models.Kudo, error) {
	return s.repo.GetKudoByID(ctx, id)
}

func (s *KudoService) ListKudos(ctx context.Context, filter repositories.KudoFilter, params pagination.Params) (*pagination.Page[models.Kudo], error) {
	return s.repo.ListKudos(ctx, filter, params)
}

// ownedKudo loads a kudo and checks that actorID sent it.
func (s *KudoService) ownedKudo(ctx context.Context, actorID, id uuid.UUID, action string) (*models.Kudo, error) {
	kudo, err := s.repo.GetKudoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if kudo.SenderID != actorID {
		return nil, errors.New(errors.ErrCodeForbidden, "Only the sender can "+action+" this kudo")
	}
	return kudo, nil
}

func (s *KudoService) UpdateKudo(ctx context.Context, actorID, id uuid.UUID, in UpdateKudoInput) (*models.Kudo, error) {
	if _, err := s.ownedKudo(ctx, actorID, id, "update"); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Points.Present() {
		updates["points"] = in.Points.Value
	}
	if in.Description.Set {
		if in.Description.Null {
			updates["description"] = nil
		} else {
			updates["description"] = security.SanitizeText(in.Description.Value)
		}
	}
	if in.CoreValueID.Set {
		if in.CoreValueID.Null || in.CoreValueID.Value == uuid.Nil {
			updates["core_value_id"] = nil
		} else {
			cv := in.CoreValueID.Value
			updates["core_value_id"] = &cv
		}
	}

	kudo, err := s.repo.UpdateKudo(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	normalizeReactions(kudo)

	feed.Enqueue(ctx, feed.Event{Name: feed.KudoUpdated, Data: kudo})
	return kudo, nil
}

// DeleteKudo removes the kudo and publishes its last known state.
func (s *KudoService) DeleteKudo(ctx context.Context, actorID, id uuid.UUID) error {
	kudo, err := s.ownedKudo(ctx, actorID, id, "delete")
	if err != nil {
		return err
	}

	if err := s.repo.DeleteKudo(ctx, id); err != nil {
		return err
	}
	normalizeReactions(kudo)

	feed.Enqueue(ctx, feed.Event{Name: feed.KudoDeleted, Data: kudo})
	return nil
}

func (s *KudoService) AddReaction(ctx context.Context, userID, kudoID uuid.UUID, emoji string) (*models.Kudo, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, errors.New(errors.ErrCodeValidation, "emoji is required")
	}
	if _, err := s.repo.GetKudoByID(ctx, kudoID); err != nil {
		return nil, err
	}

	if _, err := s.repo.AddReaction(ctx, kudoID, userID, emoji); err != nil {
		return nil, err
	}

	kudo, err := s.repo.GetKudoByID(ctx, kudoID)
	if err != nil {
		return nil, err
	}
	normalizeReactions(kudo)

	feed.Enqueue(ctx, feed.Event{Name: feed.KudoReactionAdded, Data: kudo})
	return kudo, nil
}

// RemoveReaction deletes every reaction of userID with this emoji on the kudo.
func (s *KudoService) RemoveReaction(ctx context.Context, userID, kudoID uuid.UUID, emoji string) (*models.Kudo, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, errors.New(errors.ErrCodeValidation, "emoji query param is required")
	}
	if _, err := s.repo.GetKudoByID(ctx, kudoID); err != nil {
		return nil, err
	}

	if _, err := s.repo.RemoveReactions(ctx, kudoID, userID, emoji); err != nil {
		return nil, err
	}

	kudo, err := s.repo.GetKudoByID(ctx, kudoID)
	if err != nil {
		return nil, err
	}
	normalizeReactions(kudo)

	feed.Enqueue(ctx, feed.Event{Name: feed.KudoReactionRemoved, Data: kudo})
	return kudo, nil
}

func normalizeReactions(k *models.Kudo) {
	if k.Reactions == nil {
		k.Reactions = []models.Reaction{}
	}
}
