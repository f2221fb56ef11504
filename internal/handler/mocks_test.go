package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/jeraldtan21/cts/internal/middleware"
	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/internal/service"
	"github.com/jeraldtan21/cts/internal/storage"
	apperrors "github.com/jeraldtan21/cts/pkg/errors"
)

// Function-field mocks. Unset functions return a not-found error for
// single lookups and empty results for lists.

type mockAuthService struct {
	LoginFunc          func(ctx context.Context, email, password string) (*service.LoginResult, error)
	ChangePasswordFunc func(ctx context.Context, identityID uuid.UUID, oldPassword, newPassword string) error
	ResetPasswordFunc  func(ctx context.Context, caller model.Identity, employeeID uuid.UUID, newPassword string) error
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, apperrors.UnauthorizedError("invalid email or password")
}

func (m *mockAuthService) ChangePassword(ctx context.Context, identityID uuid.UUID, oldPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, identityID, oldPassword, newPassword)
	}
	return nil
}

func (m *mockAuthService) ResetPassword(ctx context.Context, caller model.Identity, employeeID uuid.UUID, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, caller, employeeID, newPassword)
	}
	return nil
}

type mockEmployeeService struct {
	AddEmployeeFunc         func(ctx context.Context, in service.EmployeeInput) (*model.EmployeeDetail, error)
	UpdateEmployeeFunc      func(ctx context.Context, id uuid.UUID, in service.EmployeeInput) (*model.EmployeeDetail, error)
	GetEmployeeFunc         func(ctx context.Context, id uuid.UUID) (*model.EmployeeDetail, error)
	ListEmployeesFunc       func(ctx context.Context) ([]model.EmployeeDetail, error)
	ListActiveEmployeesFunc func(ctx context.Context) ([]model.EmployeeDetail, error)
	GetMyProfileFunc        func(ctx context.Context, identityID uuid.UUID) (*model.EmployeeDetail, error)
	UpdateProfileImageFunc  func(ctx context.Context, employeeID uuid.UUID, img storage.Image) (*model.Identity, error)
	UpdateIdentityImageFunc func(ctx context.Context, identityID uuid.UUID, img storage.Image) (*model.Identity, error)
}

func (m *mockEmployeeService) AddEmployee(ctx context.Context, in service.EmployeeInput) (*model.EmployeeDetail, error) {
	if m.AddEmployeeFunc != nil {
		return m.AddEmployeeFunc(ctx, in)
	}
	return &model.EmployeeDetail{}, nil
}

func (m *mockEmployeeService) UpdateEmployee(ctx context.Context, id uuid.UUID, in service.EmployeeInput) (*model.EmployeeDetail, error) {
	if m.UpdateEmployeeFunc != nil {
		return m.UpdateEmployeeFunc(ctx, id, in)
	}
	return nil, apperrors.NotFoundError("employee")
}

func (m *mockEmployeeService) GetEmployee(ctx context.Context, id uuid.UUID) (*model.EmployeeDetail, error) {
	if m.GetEmployeeFunc != nil {
		return m.GetEmployeeFunc(ctx, id)
	}
	return nil, apperrors.NotFoundError("employee")
}

func (m *mockEmployeeService) ListEmployees(ctx context.Context) ([]model.EmployeeDetail, error) {
	if m.ListEmployeesFunc != nil {
		return m.ListEmployeesFunc(ctx)
	}
	return []model.EmployeeDetail{}, nil
}

func (m *mockEmployeeService) ListActiveEmployees(ctx context.Context) ([]model.EmployeeDetail, error) {
	if m.ListActiveEmployeesFunc != nil {
		return m.ListActiveEmployeesFunc(ctx)
	}
	return []model.EmployeeDetail{}, nil
}

func (m *mockEmployeeService) GetMyProfile(ctx context.Context, identityID uuid.UUID) (*model.EmployeeDetail, error) {
	if m.GetMyProfileFunc != nil {
		return m.GetMyProfileFunc(ctx, identityID)
	}
	return nil, apperrors.NotFoundError("employee")
}

func (m *mockEmployeeService) UpdateProfileImage(ctx context.Context, employeeID uuid.UUID, img storage.Image) (*model.Identity, error) {
	if m.UpdateProfileImageFunc != nil {
		return m.UpdateProfileImageFunc(ctx, employeeID, img)
	}
	return nil, apperrors.NotFoundError("employee")
}

func (m *mockEmployeeService) UpdateIdentityImage(ctx context.Context, identityID uuid.UUID, img storage.Image) (*model.Identity, error) {
	if m.UpdateIdentityImageFunc != nil {
		return m.UpdateIdentityImageFunc(ctx, identityID, img)
	}
	return nil, apperrors.NotFoundError("identity")
}

type mockDepartmentService struct {
	AddDepartmentFunc    func(ctx context.Context, in service.DepartmentInput) (*model.Department, error)
	ListDepartmentsFunc  func(ctx context.Context) ([]model.Department, error)
	GetDepartmentFunc    func(ctx context.Context, id uuid.UUID) (*model.Department, error)
	UpdateDepartmentFunc func(ctx context.Context, id uuid.UUID, in service.DepartmentInput) (*model.Department, error)
	DeleteDepartmentFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDepartmentService) AddDepartment(ctx context.Context, in service.DepartmentInput) (*model.Department, error) {
	if m.AddDepartmentFunc != nil {
		return m.AddDepartmentFunc(ctx, in)
	}
	return &model.Department{ID: uuid.New(), Name: in.Name, Description: in.Description}, nil
}

func (m *mockDepartmentService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	if m.ListDepartmentsFunc != nil {
		return m.ListDepartmentsFunc(ctx)
	}
	return []model.Department{}, nil
}

func (m *mockDepartmentService) GetDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	if m.GetDepartmentFunc != nil {
		return m.GetDepartmentFunc(ctx, id)
	}
	return nil, apperrors.NotFoundError("department")
}

func (m *mockDepartmentService) UpdateDepartment(ctx context.Context, id uuid.UUID, in service.DepartmentInput) (*model.Department, error) {
	if m.UpdateDepartmentFunc != nil {
		return m.UpdateDepartmentFunc(ctx, id, in)
	}
	return nil, apperrors.NotFoundError("department")
}

func (m *mockDepartmentService) DeleteDepartment(ctx context.Context, id uuid.UUID) error {
	if m.DeleteDepartmentFunc != nil {
		return m.DeleteDepartmentFunc(ctx, id)
	}
	return nil
}

type mockComputerService struct {
	AddComputerFunc         func(ctx context.Context, in service.ComputerInput) (*model.ComputerDetail, error)
	UpdateComputerFunc      func(ctx context.Context, id uuid.UUID, in service.ComputerUpdate) (*model.ComputerDetail, error)
	GetComputerFunc         func(ctx context.Context, id uuid.UUID) (*model.ComputerDetail, error)
	GetAllComputersFunc     func(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult, error)
	GetByAccountabilityFunc func(ctx context.Context, employeeID uuid.UUID) ([]model.ComputerDetail, error)
	GetMyComputersFunc      func(ctx context.Context, identityID uuid.UUID) ([]model.ComputerDetail, error)
	DeleteComputerFunc      func(ctx context.Context, id uuid.UUID) error
	UpdateComputerImageFunc func(ctx context.Context, id uuid.UUID, img storage.Image) (*model.ComputerDetail, error)
}

func (m *mockComputerService) AddComputer(ctx context.Context, in service.ComputerInput) (*model.ComputerDetail, error) {
	if m.AddComputerFunc != nil {
		return m.AddComputerFunc(ctx, in)
	}
	return &model.ComputerDetail{}, nil
}

func (m *mockComputerService) UpdateComputer(ctx context.Context, id uuid.UUID, in service.ComputerUpdate) (*model.ComputerDetail, error) {
	if m.UpdateComputerFunc != nil {
		return m.UpdateComputerFunc(ctx, id, in)
	}
	return nil, apperrors.NotFoundError("computer")
}

func (m *mockComputerService) GetComputer(ctx context.Context, id uuid.UUID) (*model.ComputerDetail, error) {
	if m.GetComputerFunc != nil {
		return m.GetComputerFunc(ctx, id)
	}
	return nil, apperrors.NotFoundError("computer")
}

func (m *mockComputerService) GetAllComputers(ctx context.Context, params repository.PaginationParams) (*repository.PaginatedResult, error) {
	if m.GetAllComputersFunc != nil {
		return m.GetAllComputersFunc(ctx, params)
	}
	return &repository.PaginatedResult{Items: []model.ComputerDetail{}}, nil
}

func (m *mockComputerService) GetByAccountability(ctx context.Context, employeeID uuid.UUID) ([]model.ComputerDetail, error) {
	if m.GetByAccountabilityFunc != nil {
		return m.GetByAccountabilityFunc(ctx, employeeID)
	}
	return []model.ComputerDetail{}, nil
}

func (m *mockComputerService) GetMyComputers(ctx context.Context, identityID uuid.UUID) ([]model.ComputerDetail, error) {
	if m.GetMyComputersFunc != nil {
		return m.GetMyComputersFunc(ctx, identityID)
	}
	return []model.ComputerDetail{}, nil
}

func (m *mockComputerService) DeleteComputer(ctx context.Context, id uuid.UUID) error {
	if m.DeleteComputerFunc != nil {
		return m.DeleteComputerFunc(ctx, id)
	}
	return nil
}

func (m *mockComputerService) UpdateComputerImage(ctx context.Context, id uuid.UUID, img storage.Image) (*model.ComputerDetail, error) {
	if m.UpdateComputerImageFunc != nil {
		return m.UpdateComputerImageFunc(ctx, id, img)
	}
	return nil, apperrors.NotFoundError("computer")
}

type mockHistoryService struct {
	AddHistoryFunc func(ctx context.Context, computerID uuid.UUID, in service.HistoryInput) (*model.HistoryView, error)
	GetHistoryFunc func(ctx context.Context, computerID uuid.UUID) ([]model.HistoryView, error)
}

func (m *mockHistoryService) AddHistory(ctx context.Context, computerID uuid.UUID, in service.HistoryInput) (*model.HistoryView, error) {
	if m.AddHistoryFunc != nil {
		return m.AddHistoryFunc(ctx, computerID, in)
	}
	return nil, apperrors.NotFoundError("computer")
}

func (m *mockHistoryService) GetHistory(ctx context.Context, computerID uuid.UUID) ([]model.HistoryView, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, computerID)
	}
	return []model.HistoryView{}, nil
}

// Request and response helpers.

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details"`
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func jsonRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withVars(req *http.Request, id uuid.UUID) *http.Request {
	return mux.SetURLVars(req, map[string]string{"id": id.String()})
}

func withIdentity(req *http.Request, identity *model.Identity) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), identity))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func uploadRequest(t *testing.T, url, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, "upload.bin")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// createFormRequest builds a multipart create request with the JSON payload
// in the data field and, when image is non-nil, an image upload.
func createFormRequest(t *testing.T, url string, payload interface{}, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("data", string(data)))
	if image != nil {
		part, err := mw.CreateFormFile("image", "upload.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func adminIdentity() *model.Identity {
	return &model.Identity{ID: uuid.New(), Name: "Root", Email: "root@x.com", Role: model.RoleAdmin, Status: model.StatusActive}
}

func employeeIdentity() *model.Identity {
	return &model.Identity{ID: uuid.New(), Name: "Alice", Email: "a@x.com", Role: model.RoleEmployee, Status: model.StatusActive}
}
