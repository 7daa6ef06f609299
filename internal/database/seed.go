package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/security"
	"github.com/mroshb/kudos/pkg/logger"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var seedYAML []byte

type SeedCatalog struct {
	CoreValues []SeedCoreValue `yaml:"core_values"`
	Rewards    []SeedReward    `yaml:"rewards"`
	Users      []SeedUser      `yaml:"users"`
}

type SeedCoreValue struct {
	Name        string `yaml:"name"`
	Emoji       string `yaml:"emoji"`
	Description string `yaml:"description"`
}

type SeedReward struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PointsCost  int    `yaml:"points_cost"`
	ImageURL    string `yaml:"image_url"`
	Stock       int    `yaml:"stock"`
	IsActive    bool   `yaml:"is_active"`
}

type SeedUser struct {
	UserName     string      `yaml:"user_name"`
	Email        string      `yaml:"email"`
	FirstName    string      `yaml:"first_name"`
	LastName     string      `yaml:"last_name"`
	Role         models.Role `yaml:"role"`
	GivingBudget int         `yaml:"giving_budget"`
}

type SeedOptions struct {
	// Users also creates the demo accounts, all sharing Password.
	Users    bool
	Password string
}

// SeedResult counts the rows created by one Seed call.
type SeedResult struct {
	CoreValues int
	Rewards    int
	Users      int
}

// LoadSeedCatalog parses the embedded catalog.
func LoadSeedCatalog() (*SeedCatalog, error) {
	var catalog SeedCatalog
	if err := yaml.Unmarshal(seedYAML, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}
	return &catalog, nil
}

// Seed inserts every catalog entry that is not present yet. Core values and
// rewards are matched by name, users by email, so running it again is a no-op.
func Seed(ctx context.Context, db *gorm.DB, opts SeedOptions) (*SeedResult, error) {
	catalog, err := LoadSeedCatalog()
	if err != nil {
		return nil, err
	}
	return SeedFrom(ctx, db, catalog, opts)
}

func SeedFrom(ctx context.Context, db *gorm.DB, catalog *SeedCatalog, opts SeedOptions) (*SeedResult, error) {
	result := &SeedResult{}
	db = db.WithContext(ctx)

	for _, cv := range catalog.CoreValues {
		created, err := createMissing(db, "name = ?", cv.Name, &models.CoreValue{
			Name:        cv.Name,
			Emoji:       cv.Emoji,
			Description: cv.Description,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed core value %q: %w", cv.Name, err)
		}
		if created {
			result.CoreValues++
		}
	}

	for _, r := range catalog.Rewards {
		created, err := createMissing(db, "name = ?", r.Name, &models.Reward{
			Name:        r.Name,
			Description: optionalString(r.Description),
			PointsCost:  r.PointsCost,
			ImageURL:    optionalString(r.ImageURL),
			Stock:       r.Stock,
			IsActive:    r.IsActive,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to seed reward %q: %w", r.Name, err)
		}
		if created {
			result.Rewards++
		}
	}

	if opts.Users {
		hash, err := security.HashPassword(opts.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash seed password: %w", err)
		}

		for _, u := range catalog.Users {
			created, err := createMissing(db, "email = ?", u.Email, &models.User{
				UserName:     u.UserName,
				Email:        u.Email,
				Password:     hash,
				FirstName:    u.FirstName,
				LastName:     u.LastName,
				Role:         u.Role,
				GivingBudget: u.GivingBudget,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to seed user %q: %w", u.Email, err)
			}
			if created {
				result.Users++
			}
		}
	}

	logger.Info("Seeding completed",
		"core_values", result.CoreValues,
		"rewards", result.Rewards,
		"users", result.Users,
	)
	return result, nil
}

// createMissing inserts row unless a row matching query already exists.
func createMissing(db *gorm.DB, query string, arg interface{}, row interface{}) (bool, error) {
	var count int64
	if err := db.Model(row).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if err := db.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
