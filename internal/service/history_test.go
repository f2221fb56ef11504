package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeraldtan21/cts/internal/clock"
	"github.com/jeraldtan21/cts/internal/model"
	apperrors "github.com/jeraldtan21/cts/pkg/errors"
)

type historyFixture struct {
	history    *mockHistoryRepository
	computers  *mockComputerRepository
	identities *mockIdentityRepository
	notifier   *recordingNotifier
	clock      *clock.Stub
	svc        *HistoryService
}

func newHistoryFixture() *historyFixture {
	f := &historyFixture{
		history:    &mockHistoryRepository{},
		computers:  &mockComputerRepository{},
		identities: &mockIdentityRepository{},
		notifier:   &recordingNotifier{},
		clock:      clock.Fixed(),
	}
	f.svc = NewHistoryService(f.history, f.computers, f.identities, f.clock, f.notifier, quietLogger())
	return f
}

func TestAddHistory_AppendsEntry(t *testing.T) {
	f := newHistoryFixture()
	computer := &model.Computer{ID: uuid.New(), Model: "ThinkPad T14", SerialNumber: "SN-001"}
	assignee := &model.Identity{ID: uuid.New(), Name: "Alice", Email: "a@x.com"}
	f.computers.GetComputerByIDFunc = func(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
		return computer, nil
	}
	f.identities.GetIdentityByIDFunc = func(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
		return assignee, nil
	}
	var created model.HistoryEntry
	f.history.CreateHistoryEntryFunc = func(ctx context.Context, entry model.HistoryEntry) error {
		created = entry
		return nil
	}

	view, err := f.svc.AddHistory(context.Background(), computer.ID, HistoryInput{Remarks: " initial setup ", AssigneeID: assignee.ID})
	f.svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, "initial setup", created.Remarks)
	assert.Equal(t, computer.ID, created.ComputerID)
	assert.Equal(t, f.clock.Now(), created.CreatedAt)
	assert.Equal(t, "Alice", view.Assignee.Name)

	sent := f.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, NotificationTypeHistoryAdded, sent[0].Type)
	assert.Equal(t, "a@x.com", sent[0].Recipient)
}

func TestAddHistory_NothingWrittenOnFailure(t *testing.T) {
	computerID := uuid.New()
	tests := []struct {
		name     string
		in       HistoryInput
		arrange  func(f *historyFixture)
		wantCode apperrors.ErrorCode
		wantText string
	}{
		{
			name:     "missing computer",
			in:       HistoryInput{Remarks: "x", AssigneeID: uuid.New()},
			arrange:  func(f *historyFixture) {},
			wantCode: apperrors.ErrorCodeNotFound,
			wantText: "computer not found",
		},
		{
			name: "missing assignee",
			in:   HistoryInput{Remarks: "x", AssigneeID: uuid.New()},
			arrange: func(f *historyFixture) {
				f.computers.GetComputerByIDFunc = func(ctx context.Context, id uuid.UUID) (*model.Computer, error) {
					return &model.Computer{ID: id}, nil
				}
			},
			wantCode: apperrors.ErrorCodeNotFound,
			wantText: "identity not found",
		},
		{
			name:     "empty remarks",
			in:       HistoryInput{Remarks: "  ", AssigneeID: uuid.New()},
			arrange:  func(f *historyFixture) {},
			wantCode: apperrors.ErrorCodeValidation,
			wantText: "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHistoryFixture()
			tt.arrange(f)
			f.history.CreateHistoryEntryFunc = func(ctx context.Context, entry model.HistoryEntry) error {
				t.Fatal("history entry must not be written")
				return nil
			}

			_, err := f.svc.AddHistory(context.Background(), computerID, tt.in)
			f.svc.Wait()

			assert.True(t, apperrors.HasCode(err, tt.wantCode))
			assert.Contains(t, err.Error(), tt.wantText)
			assert.Empty(t, f.notifier.all())
		})
	}
}

func TestGetHistory(t *testing.T) {
	t.Run("missing computer", func(t *testing.T) {
		f := newHistoryFixture()
		f.computers.ComputerExistsFunc = func(ctx context.Context, id uuid.UUID) (bool, error) {
			return false, nil
		}

		_, err := f.svc.GetHistory(context.Background(), uuid.New())

		assert.True(t, apperrors.HasCode(err, apperrors.ErrorCodeNotFound))
	})

	t.Run("empty history", func(t *testing.T) {
		f := newHistoryFixture()

		got, err := f.svc.GetHistory(context.Background(), uuid.New())

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
