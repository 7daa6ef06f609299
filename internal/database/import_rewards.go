package database

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/security"
	"github.com/mroshb/kudos/pkg/logger"
	"github.com/mroshb/kudos/pkg/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Reward sheet columns, after a header row.
const (
	colName = iota
	colDescription
	colPointsCost
	colImageURL
	colStock
	colIsActive
)

type ImportReport struct {
	Imported   int
	Duplicates int
	Rejected   []RowError
}

// RowError describes a spreadsheet row that was not imported. Row is 1-based
// as shown by spreadsheet tools.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ImportRewards reads rewards from the first sheet of an .xlsx workbook.
// Rows naming an existing reward are skipped, malformed rows are reported.
func ImportRewards(ctx context.Context, db *gorm.DB, r io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	report := &ImportReport{}
	db = db.WithContext(ctx)

	for i, row := range rows {
		if i == 0 || isBlankRow(row) {
			continue
		}

		reward, reason := parseRewardRow(row)
		if reason != "" {
			report.Rejected = append(report.Rejected, RowError{Row: i + 1, Reason: reason})
			continue
		}

		created, err := createMissing(db, "name = ?", reward.Name, reward)
		if err != nil {
			return report, fmt.Errorf("failed to import row %d: %w", i+1, err)
		}
		if created {
			report.Imported++
		} else {
			report.Duplicates++
		}
	}

	logger.Info("Rewards imported",
		"imported", report.Imported,
		"duplicates", report.Duplicates,
		"rejected", len(report.Rejected),
	)
	return report, nil
}

func parseRewardRow(row []string) (*models.Reward, string) {
	name := security.SanitizeText(cell(row, colName))
	if name == "" {
		return nil, "name is required"
	}

	cost, err := strconv.Atoi(utils.NormalizeDigits(cell(row, colPointsCost)))
	if err != nil || cost < 0 {
		return nil, fmt.Sprintf("invalid points_cost %q", cell(row, colPointsCost))
	}

	stock := 0
	if raw := cell(row, colStock); raw != "" {
		stock, err = strconv.Atoi(utils.NormalizeDigits(raw))
		if err != nil || stock < 0 {
			return nil, fmt.Sprintf("invalid stock %q", raw)
		}
	}

	active := true
	if raw := cell(row, colIsActive); raw != "" {
		active, err = strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			return nil, fmt.Sprintf("invalid is_active %q", raw)
		}
	}

	return &models.Reward{
		Name:        name,
		Description: optionalString(security.SanitizeText(cell(row, colDescription))),
		PointsCost:  cost,
		ImageURL:    optionalString(cell(row, colImageURL)),
		Stock:       stock,
		IsActive:    active,
	}, ""
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
