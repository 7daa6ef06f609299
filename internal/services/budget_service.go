package services

import (
	"context"
	"time"

	"github.com/mroshb/kudos/internal/repositories"
	"github.com/mroshb/kudos/pkg/logger"
)

// BudgetService refills every user's giving budget.
type BudgetService struct {
	users  *repositories.UserRepository
	budget int
	now    func() time.Time
}

func NewBudgetService(users *repositories.UserRepository, budget int) *BudgetService {
	return &BudgetService{users: users, budget: budget, now: time.Now}
}

// ResetGivingBudgets sets each giving budget back to the configured amount.
// Unspent budget does not carry over.
func (s *BudgetService) ResetGivingBudgets(ctx context.Context) (int64, error) {
	at := s.now().UTC()
	n, err := s.users.ResetGivingBudgets(ctx, s.budget, at)
	if err != nil {
		return 0, err
	}
	logger.Info("Giving budgets reset", "users", n, "budget", s.budget)
	return n, nil
}
