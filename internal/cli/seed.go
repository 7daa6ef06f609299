package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mroshb/kudos/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		users    bool
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo catalog and users",
		Long: `Insert the embedded core values, rewards and demo users. Rows that already
exist (by name, or by email for users) are left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = rootOpts.Config.SeedPassword
			}

			db, err := rootOpts.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			return runSeed(cmd.Context(), db, database.SeedOptions{Users: users, Password: password}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&users, "users", true, "also create the demo accounts")
	cmd.Flags().StringVar(&password, "password", "", "password for demo accounts (default SEED_PASSWORD)")

	return cmd
}

func runSeed(ctx context.Context, db *gorm.DB, opts database.SeedOptions, out io.Writer) error {
	res, err := database.Seed(ctx, db, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %d core values, %d rewards, %d users\n", res.CoreValues, res.Rewards, res.Users)
	return nil
}
