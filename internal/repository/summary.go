package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jeraldtan21/cts/internal/model"
)

// SummaryRepository computes dashboard counts on demand.
type SummaryRepository interface {
	GetSummary(ctx context.Context) (*model.Summary, error)
}

type summaryRepository struct {
	DB *sql.DB
}

func NewSummaryRepository(db *sql.DB) SummaryRepository {
	return &summaryRepository{DB: db}
}

// GetSummary counts employees, departments and computers, and computers per
// status. Statuses without computers are reported as zero.
func (r *summaryRepository) GetSummary(ctx context.Context) (*model.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	summary := model.NewSummary()

	totals := `
		SELECT
			(SELECT COUNT(*) FROM employees),
			(SELECT COUNT(*) FROM departments),
			(SELECT COUNT(*) FROM computers)`

	err := r.DB.QueryRowContext(ctx, totals).Scan(
		&summary.TotalEmployees,
		&summary.TotalDepartments,
		&summary.TotalComputers,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count totals: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM computers GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count computers by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status model.ComputerStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.ComputersByStatus[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return summary, nil
}
