package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeraldtan21/cts/internal/model"
)

var computerDetailColumns = []string{
	"id", "model", "serial_number", "cpu", "ram", "storage", "gpu", "os",
	"status", "unit_type", "image_path", "employee_id", "created_at", "updated_at",
	"employee_number", "identity_id", "department_id", "name", "email",
}

func testComputer(employeeID uuid.UUID) model.Computer {
	return model.Computer{
		ID:           uuid.New(),
		Model:        "ThinkPad T14",
		SerialNumber: "SN-1",
		CPU:          "Intel Core i7",
		RAM:          "16GB",
		Storage:      "512GB SSD",
		GPU:          "Intel Iris Xe",
		OS:           "Windows 11",
		Status:       model.ComputerWorking,
		UnitType:     "laptop",
		EmployeeID:   employeeID,
	}
}

func addComputerRow(rows *sqlmock.Rows, c model.Computer, identityID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		c.ID.String(), c.Model, c.SerialNumber, c.CPU, c.RAM, c.Storage, c.GPU, c.OS,
		string(c.Status), c.UnitType, c.ImagePath, c.EmployeeID.String(), now, now,
		"EMP-001", identityID.String(), uuid.NewString(), "Alice", "a@x.com",
	)
}

func TestCreateComputer_Success(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewComputerRepository(db)
	c := testComputer(uuid.New())

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO computers (id, model, serial_number, cpu, ram, storage, gpu, os, status, unit_type, image_path, employee_id)`)).
		WithArgs(c.ID, c.Model, c.SerialNumber, c.CPU, c.RAM, c.Storage, c.GPU, c.OS, c.Status, c.UnitType, c.ImagePath, c.EmployeeID).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, repo.CreateComputer(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateComputer_ConstraintViolations(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"duplicate serial", uniqueViolation(constraintComputerSerial), ErrDuplicateSerial},
		{"unknown employee", foreignKeyViolation(constraintComputerEmployee), ErrEmployeeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			repo := NewComputerRepository(db)

			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO computers`)).WillReturnError(tt.err)

			err := repo.CreateComputer(context.Background(), testComputer(uuid.New()))

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetComputerDetail_ResolvesAccountable(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewComputerRepository(db)
	c := testComputer(uuid.New())
	identityID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`JOIN employees e ON e.id = c.employee_id JOIN identities i ON i.id = e.identity_id WHERE c.id = $1`)).
		WithArgs(c.ID).
		WillReturnRows(addComputerRow(sqlmock.NewRows(computerDetailColumns), c, identityID))

	got, err := repo.GetComputerDetail(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, c.SerialNumber, got.SerialNumber)
	assert.Equal(t, c.EmployeeID, got.Accountable.EmployeeID)
	assert.Equal(t, identityID, got.Accountable.IdentityID)
	assert.Equal(t, "Alice", got.Accountable.Name)
	assert.Nil(t, got.Performance)
}

func TestGetComputerByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewComputerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM computers c WHERE c.id = $1`)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetComputerByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrComputerNotFound)
}

func TestGetComputersPaginated(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewComputerRepository(db)

	rows := sqlmock.NewRows(computerDetailColumns)
	addComputerRow(rows, testComputer(uuid.New()), uuid.New())
	addComputerRow(rows, testComputer(uuid.New()), uuid.New())

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY c.created_at DESC, c.id OFFSET $1 LIMIT $2`)).
		WithArgs(0, 2).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM computers`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	result, err := repo.GetComputersPaginated(context.Background(), PaginationParams{Offset: 0, Limit: 2})

	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, 5, result.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetComputersPaginated_QueryError(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewComputerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`OFFSET $1 LIMIT $2`)).WillReturnError(errors.New("database error"))

	_, err := repo.GetComputersPaginated(context.Background(), PaginationParams{Offset: 0, Limit: 10})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query computers")
}

func TestGetComputersByEmployee_EmptyIsNotNil(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewComputerRepository(db)
	employeeID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE c.employee_id = $1 ORDER BY c.model, c.serial_number`)).
		WithArgs(employeeID).
		WillReturnRows(sqlmock.NewRows(computerDetailColumns))

	got, err := repo.GetComputersByEmployee(context.Background(), employeeID)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateComputer(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(exp *sqlmock.ExpectedExec)
		wantErr error
	}{
		{
			name:  "updated",
			setup: func(exp *sqlmock.ExpectedExec) { exp.WillReturnResult(sqlmock.NewResult(0, 1)) },
		},
		{
			name:    "missing",
			setup:   func(exp *sqlmock.ExpectedExec) { exp.WillReturnResult(sqlmock.NewResult(0, 0)) },
			wantErr: ErrComputerNotFound,
		},
		{
			name:    "serial taken",
			setup:   func(exp *sqlmock.ExpectedExec) { exp.WillReturnError(uniqueViolation(constraintComputerSerial)) },
			wantErr: ErrDuplicateSerial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			repo := NewComputerRepository(db)
			c := testComputer(uuid.New())

			tt.setup(mock.ExpectExec(regexp.QuoteMeta(`UPDATE computers SET model = $1`)).
				WithArgs(c.Model, c.SerialNumber, c.CPU, c.RAM, c.Storage, c.GPU, c.OS, c.Status, c.UnitType, c.EmployeeID, c.ID))

			err := repo.UpdateComputer(context.Background(), c)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateComputerImage(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewComputerRepository(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE computers SET image_path = $1`)).
		WithArgs("uploads/computers/x.png", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateComputerImage(context.Background(), id, "uploads/computers/x.png"))
}

func TestDeleteComputer_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewComputerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM computers WHERE id = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteComputer(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrComputerNotFound)
}

func TestSerialExists(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewComputerRepository(db)
	exclude := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM computers WHERE serial_number = $1 AND id <> $2)`)).
		WithArgs("SN-1", exclude).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.SerialExists(context.Background(), "SN-1", exclude)

	require.NoError(t, err)
	assert.True(t, exists)
}
