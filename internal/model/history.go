package model

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one append-only remark against a computer.
type HistoryEntry struct {
	ID         uuid.UUID `json:"id"`
	ComputerID uuid.UUID `json:"computer_id"`
	Remarks    string    `json:"remarks"`
	AssigneeID uuid.UUID `json:"assignee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryView is a history entry with the assignee resolved.
type HistoryView struct {
	HistoryEntry
	Assignee IdentityRef `json:"assignee"`
}
