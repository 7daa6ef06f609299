// Package cli defines the kudos command tree.
package cli

import (
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/mroshb/kudos/internal/config"
	"github.com/mroshb/kudos/internal/database"
	"github.com/mroshb/kudos/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags and the configuration loaded before any
// subcommand runs.
type RootOptions struct {
	EnvFile string
	Config  *config.Config
}

// NewRootCommand creates the root command for the kudos binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kudos",
		Short: "Kudos - peer recognition service",
		Long: `Kudos lets colleagues send each other points from a monthly giving budget,
react to the recognition they see in a live feed and redeem what they
received for rewards.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "dotenv file read before the environment (missing file is ignored)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewImportRewardsCommand(opts))

	return cmd
}

func (o *RootOptions) load() error {
	if err := godotenv.Load(o.EnvFile); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", o.EnvFile, err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger.Init(cfg.LogLevel, cfg.AppEnv)

	if err := cfg.ValidateProductionSecurity(); err != nil {
		return fmt.Errorf("production security validation failed: %w", err)
	}

	o.Config = cfg
	return nil
}

// openDB connects and migrates; every subcommand needs the schema in place.
func (o *RootOptions) openDB() (*gorm.DB, error) {
	db, err := database.Connect(o.Config)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if err := database.Close(db); err != nil {
		logger.Warn("Failed to close database", "error", err)
	}
}
