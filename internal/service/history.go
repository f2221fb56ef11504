package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/clock"
	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/pkg/errors"
)

type HistoryInput struct {
	Remarks    string    `json:"remarks"`
	AssigneeID uuid.UUID `json:"assignee_id"`
}

// HistoryService appends to and reads the accountability log.
type HistoryService struct {
	history    repository.HistoryRepository
	computers  repository.ComputerRepository
	identities repository.IdentityRepository
	clock      clock.Clock
	notify     *dispatcher
	logger     *log.Logger
}

func NewHistoryService(history repository.HistoryRepository, computers repository.ComputerRepository,
	identities repository.IdentityRepository, clk clock.Clock, notifier NotificationService, logger *log.Logger) *HistoryService {
	if logger == nil {
		logger = log.Default()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &HistoryService{
		history:    history,
		computers:  computers,
		identities: identities,
		clock:      clk,
		notify:     newDispatcher(notifier, logger),
		logger:     logger,
	}
}

// AddHistory records a remark against a computer. Both the computer and
// the assignee identity must exist; nothing is written otherwise.
func (s *HistoryService) AddHistory(ctx context.Context, computerID uuid.UUID, in HistoryInput) (*model.HistoryView, error) {
	remarks := strings.TrimSpace(in.Remarks)
	fields := fieldErrors{}
	if remarks == "" {
		fields["remarks"] = "remarks is required"
	}
	if in.AssigneeID == uuid.Nil {
		fields["assignee_id"] = "assignee_id is required"
	}
	if err := fields.err(); err != nil {
		return nil, err
	}

	computer, err := s.computers.GetComputerByID(ctx, computerID)
	if err != nil {
		return nil, translate(err, "failed to retrieve computer")
	}
	assignee, err := s.identities.GetIdentityByID(ctx, in.AssigneeID)
	if err != nil {
		return nil, translate(err, "failed to retrieve assignee")
	}

	entry := model.HistoryEntry{
		ID:         uuid.New(),
		ComputerID: computerID,
		Remarks:    remarks,
		AssigneeID: assignee.ID,
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := s.history.CreateHistoryEntry(ctx, entry); err != nil {
		return nil, translate(err, "failed to create history entry")
	}

	s.logger.Printf("History entry added: computer=%s, assignee=%s", computerID, assignee.ID)

	s.notify.send(AccountabilityNotification{
		Type:      NotificationTypeHistoryAdded,
		Recipient: assignee.Email,
		Message:   fmt.Sprintf("New remark on %s (%s): %s", computer.Model, computer.SerialNumber, remarks),
		Metadata: map[string]string{
			"computer_id":      computerID.String(),
			"history_entry_id": entry.ID.String(),
		},
	})

	return &model.HistoryView{
		HistoryEntry: entry,
		Assignee:     model.IdentityRef{ID: assignee.ID, Name: assignee.Name, Email: assignee.Email},
	}, nil
}

// GetHistory returns a computer's entries oldest first.
func (s *HistoryService) GetHistory(ctx context.Context, computerID uuid.UUID) ([]model.HistoryView, error) {
	exists, err := s.computers.ComputerExists(ctx, computerID)
	if err != nil {
		return nil, errors.DatabaseError("failed to check computer existence", err)
	}
	if !exists {
		return nil, errors.NotFoundError("computer")
	}

	entries, err := s.history.GetHistoryByComputer(ctx, computerID)
	if err != nil {
		return nil, errors.DatabaseError("failed to retrieve history", err)
	}
	return entries, nil
}

// Wait blocks until pending notifications are delivered or given up on.
func (s *HistoryService) Wait() {
	s.notify.Wait()
}
