package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mroshb/kudos/internal/app"
	"github.com/mroshb/kudos/internal/database"
	"github.com/mroshb/kudos/pkg/logger"
	"github.com/spf13/cobra"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the realtime feed and the budget reset job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("Starting kudos service...", "env", cfg.AppEnv)

			db, err := rootOpts.openDB()
			if err != nil {
				return err
			}

			if seed {
				res, err := database.Seed(ctx, db, database.SeedOptions{})
				if err != nil {
					logger.Warn("Failed to seed catalog", "error", err)
				} else {
					logger.Info("Catalog seeded", "core_values", res.CoreValues, "rewards", res.Rewards)
				}
			}

			rdb, err := database.ConnectRedis(ctx, cfg)
			if err != nil {
				closeDB(db)
				return err
			}

			a := app.New(cfg, db, rdb)
			defer a.Close()

			if err := a.EnableTelegramRelay(); err != nil {
				logger.Warn("Telegram relay disabled", "error", err)
			}

			if err := a.Run(ctx); err != nil {
				return err
			}
			logger.Info("Service stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", true, "create missing core values and rewards on start")

	return cmd
}
