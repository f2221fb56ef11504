package router

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jeraldtan21/cts/internal/config"
	"github.com/jeraldtan21/cts/internal/handler"
	"github.com/jeraldtan21/cts/internal/middleware"
	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/pkg/errors"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Profile     *handler.ProfileHandler
	Employees   *handler.EmployeeHandler
	Departments *handler.DepartmentHandler
	Computers   handler.ComputerHandlerInterface
	Dashboard   *handler.DashboardHandler
	Health      *handler.HealthHandler

	// UploadsDir is served at /uploads/ when set. It is empty unless images
	// are stored on the local filesystem.
	UploadsDir string
}

// NewRouter creates a new router and sets up the routes with security middleware.
func NewRouter(h Handlers, auth *middleware.AuthMiddleware, cfg *config.Config, logger *log.Logger) *mux.Router {
	r := mux.NewRouter()

	securityMW := middleware.NewSecurityMiddleware(&cfg.Security)
	loggingMW := middleware.NewLoggingMiddleware(logger)

	// Apply global middleware in order
	chain := []mux.MiddlewareFunc{
		securityMW.TrustedProxy,
		loggingMW.LogRequests,
		securityMW.SecurityHeaders,
		securityMW.CORS,
		securityMW.RateLimit,
		securityMW.RequestTimeout,
	}
	r.Use(chain...)

	// mux skips middleware for unmatched requests, so the fallbacks get the
	// same chain. CORS answers preflight requests before they reach them.
	r.NotFoundHandler = wrap(http.HandlerFunc(notFound), chain)
	r.MethodNotAllowedHandler = wrap(http.HandlerFunc(methodNotAllowed), chain)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Public
	api.HandleFunc("/health", h.Health.HealthHandler).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", h.Auth.LoginHandler).Methods(http.MethodPost)

	authed := func(fn http.HandlerFunc) http.Handler {
		return auth.Authenticate(fn)
	}
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return auth.Authenticate(auth.RequireRole(model.RoleAdmin)(fn))
	}

	// Any signed-in identity
	api.Handle("/auth/verify", authed(h.Auth.VerifyHandler)).Methods(http.MethodGet)
	api.Handle("/auth/password", authed(h.Auth.ChangePasswordHandler)).Methods(http.MethodPut)
	api.Handle("/me", authed(h.Profile.GetProfileHandler)).Methods(http.MethodGet)
	api.Handle("/me/computers", authed(h.Profile.GetMyComputersHandler)).Methods(http.MethodGet)
	api.Handle("/me/image", authed(h.Profile.UpdateMyImageHandler)).Methods(http.MethodPut)
	api.Handle("/catalog/hardware", authed(h.Dashboard.HardwareCatalogHandler)).Methods(http.MethodGet)
	api.Handle("/computers/{id}", authed(h.Computers.GetComputerHandler)).Methods(http.MethodGet)
	api.Handle("/computers/{id}/history", authed(h.Computers.GetHistoryHandler)).Methods(http.MethodGet)

	// Admin
	api.Handle("/dashboard/summary", adminOnly(h.Dashboard.SummaryHandler)).Methods(http.MethodGet)

	api.Handle("/departments", adminOnly(h.Departments.CreateDepartmentHandler)).Methods(http.MethodPost)
	api.Handle("/departments", adminOnly(h.Departments.ListDepartmentsHandler)).Methods(http.MethodGet)
	api.Handle("/departments/{id}", adminOnly(h.Departments.GetDepartmentHandler)).Methods(http.MethodGet)
	api.Handle("/departments/{id}", adminOnly(h.Departments.UpdateDepartmentHandler)).Methods(http.MethodPut)
	api.Handle("/departments/{id}", adminOnly(h.Departments.DeleteDepartmentHandler)).Methods(http.MethodDelete)

	// /employees/active is registered before /employees/{id} so it is not
	// parsed as an id.
	api.Handle("/employees", adminOnly(h.Employees.CreateEmployeeHandler)).Methods(http.MethodPost)
	api.Handle("/employees", adminOnly(h.Employees.ListEmployeesHandler)).Methods(http.MethodGet)
	api.Handle("/employees/active", adminOnly(h.Employees.ListActiveEmployeesHandler)).Methods(http.MethodGet)
	api.Handle("/employees/{id}", adminOnly(h.Employees.GetEmployeeHandler)).Methods(http.MethodGet)
	api.Handle("/employees/{id}", adminOnly(h.Employees.UpdateEmployeeHandler)).Methods(http.MethodPut)
	api.Handle("/employees/{id}/image", adminOnly(h.Employees.UpdateEmployeeImageHandler)).Methods(http.MethodPut)
	api.Handle("/employees/{id}/password", adminOnly(h.Employees.ResetPasswordHandler)).Methods(http.MethodPut)
	api.Handle("/employees/{id}/computers", adminOnly(h.Employees.GetEmployeeComputersHandler)).Methods(http.MethodGet)

	api.Handle("/computers", adminOnly(h.Computers.CreateComputerHandler)).Methods(http.MethodPost)
	api.Handle("/computers", adminOnly(h.Computers.GetAllComputersHandler)).Methods(http.MethodGet)
	api.Handle("/computers/{id}", adminOnly(h.Computers.UpdateComputerHandler)).Methods(http.MethodPut)
	api.Handle("/computers/{id}", adminOnly(h.Computers.DeleteComputerHandler)).Methods(http.MethodDelete)
	api.Handle("/computers/{id}/image", adminOnly(h.Computers.UpdateComputerImageHandler)).Methods(http.MethodPut)
	api.Handle("/computers/{id}/history", adminOnly(h.Computers.AddHistoryHandler)).Methods(http.MethodPost)

	if h.UploadsDir != "" {
		files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.UploadsDir)))
		r.PathPrefix("/uploads/").Handler(noDirectoryListing(files)).Methods(http.MethodGet, http.MethodHead)
	}

	return r
}

func wrap(h http.Handler, chain []mux.MiddlewareFunc) http.Handler {
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func notFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, errors.NotFoundError("route"))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, errors.MethodNotAllowedError(r.Method))
}

func noDirectoryListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			notFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
