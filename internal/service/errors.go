package service

import (
	stderrors "errors"

	"github.com/jeraldtan21/cts/internal/repository"
	"github.com/jeraldtan21/cts/pkg/errors"
)

// translate maps repository sentinels onto AppErrors. Anything unknown is
// reported as a database error with message.
func translate(err error, message string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsAppError(err); ok {
		return err
	}

	switch {
	case stderrors.Is(err, repository.ErrIdentityNotFound):
		return errors.NotFoundError("identity")
	case stderrors.Is(err, repository.ErrEmployeeNotFound):
		return errors.NotFoundError("employee")
	case stderrors.Is(err, repository.ErrDepartmentNotFound):
		return errors.NotFoundError("department")
	case stderrors.Is(err, repository.ErrComputerNotFound):
		return errors.NotFoundError("computer")
	case stderrors.Is(err, repository.ErrDuplicateEmail):
		return errors.AlreadyExistsError("identity with this email")
	case stderrors.Is(err, repository.ErrDuplicateEmployeeNumber):
		return errors.AlreadyExistsError("employee with this employee number")
	case stderrors.Is(err, repository.ErrDuplicateSerial):
		return errors.AlreadyExistsError("computer with this serial number")
	case stderrors.Is(err, repository.ErrDuplicateDepartmentName):
		return errors.AlreadyExistsError("department with this name")
	case stderrors.Is(err, repository.ErrDepartmentInUse):
		return errors.ConflictError("department is still assigned to employees")
	}
	return errors.DatabaseError(message, err)
}

// fieldErrors collects per-field validation failures.
type fieldErrors map[string]string

func (f fieldErrors) check(field string, err error) {
	if err != nil {
		if _, seen := f[field]; !seen {
			f[field] = err.Error()
		}
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return errors.ValidationErrorWithDetails("validation failed", f)
}
