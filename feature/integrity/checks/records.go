package checks

import (
	"context"
	"fmt"

	"cryptogram-sync/core/gameid"
	"cryptogram-sync/feature/games/models"

	"gorm.io/gorm"
)

// RecordIssue describes a stored game that breaks an invariant.
type RecordIssue struct {
	ID      string `json:"id"`
	Problem string `json:"problem"`
}

// RecordsReport is the result of scanning the stored games of one owner.
type RecordsReport struct {
	OwnerID string        `json:"owner_id"`
	Total   int           `json:"total"`
	Valid   int           `json:"valid"`
	Issues  []RecordIssue `json:"issues"`
}

// CheckRecords loads every game of ownerID and reports those with a non-canonical id
// or failing GameRecord.Validate. Records are scanned in batches of batchSize.
func CheckRecords(ctx context.Context, db *gorm.DB, ownerID string, batchSize int) (*RecordsReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	report := &RecordsReport{OwnerID: ownerID, Issues: []RecordIssue{}}

	var batch []models.GameRecord
	result := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			for i := range batch {
				report.Total++
				if issue := inspectRecord(&batch[i]); issue != nil {
					report.Issues = append(report.Issues, *issue)
					continue
				}
				report.Valid++
			}
			return nil
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to scan game records: %w", result.Error)
	}

	return report, nil
}

func inspectRecord(g *models.GameRecord) *RecordIssue {
	canonical, err := gameid.Canonical(g.ID)
	if err != nil {
		return &RecordIssue{ID: g.ID, Problem: err.Error()}
	}
	if canonical != g.ID {
		return &RecordIssue{ID: g.ID, Problem: "id is not stored in canonical form " + canonical}
	}
	if err := g.Validate(); err != nil {
		return &RecordIssue{ID: g.ID, Problem: err.Error()}
	}
	return nil
}
