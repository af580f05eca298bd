package services

import "errors"

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrDayNotFound          = errors.New("project day not found")
	ErrSubtaskNotFound      = errors.New("subtask not found")
	ErrEmployeeNotAssigned  = errors.New("employee is not assigned to this day")
	ErrUnauthorized         = errors.New("operation not permitted for this user")
	ErrInvalidStatus        = errors.New("invalid day status value")
	ErrGeneratorUnavailable = errors.New("plan generator unavailable")
)
