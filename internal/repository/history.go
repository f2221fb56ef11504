package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/model"
)

// HistoryRepository is the append-only accountability log. There is no
// update or delete.
type HistoryRepository interface {
	CreateHistoryEntry(ctx context.Context, entry model.HistoryEntry) error
	// GetHistoryByComputer returns entries oldest first with the assignee
	// resolved.
	GetHistoryByComputer(ctx context.Context, computerID uuid.UUID) ([]model.HistoryView, error)
}

type historyRepository struct {
	DB *sql.DB
}

func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{DB: db}
}

func (r *historyRepository) CreateHistoryEntry(ctx context.Context, entry model.HistoryEntry) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	query := `
		INSERT INTO history_entries (id, computer_id, remarks, assignee_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.ComputerID,
		entry.Remarks,
		entry.AssigneeID,
		entry.CreatedAt,
	)
	if err != nil {
		// A computer or identity removed between the service's checks and
		// this insert surfaces as a foreign key violation.
		if mapped := translateConstraint(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create history entry: %w", err)
	}
	return nil
}

func (r *historyRepository) GetHistoryByComputer(ctx context.Context, computerID uuid.UUID) ([]model.HistoryView, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	query := `
		SELECT h.id, h.computer_id, h.remarks, h.assignee_id, h.created_at, i.name, i.email
		FROM history_entries h
		JOIN identities i ON i.id = h.assignee_id
		WHERE h.computer_id = $1
		ORDER BY h.created_at ASC, h.id ASC`

	rows, err := r.DB.QueryContext(ctx, query, computerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []model.HistoryView{}
	for rows.Next() {
		var v model.HistoryView
		if err := rows.Scan(&v.ID, &v.ComputerID, &v.Remarks, &v.AssigneeID, &v.CreatedAt,
			&v.Assignee.Name, &v.Assignee.Email); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		v.Assignee.ID = v.AssigneeID
		entries = append(entries, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}
