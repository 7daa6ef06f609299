package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mroshb/kudos/internal/database"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func NewImportRewardsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-rewards <file.xlsx>",
		Short: "Import rewards from a spreadsheet",
		Long: `Import rewards from the first sheet of an .xlsx workbook. The first row is a
header; columns are name, description, points_cost, image_url, stock and
is_active. Rewards whose name already exists are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rootOpts.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			return runImportRewards(cmd.Context(), db, args[0], cmd.OutOrStdout())
		},
	}
}

func runImportRewards(ctx context.Context, db *gorm.DB, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := database.ImportRewards(ctx, db, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Imported %d rewards, skipped %d duplicates, rejected %d rows\n",
		report.Imported, report.Duplicates, len(report.Rejected))
	for _, rej := range report.Rejected {
		fmt.Fprintf(out, "  %s\n", rej)
	}
	return nil
}
