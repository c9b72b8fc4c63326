package domain

import "errors"

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrShareNotFound       = errors.New("shared task not found")
	ErrSelfShare           = errors.New("cannot share a task with yourself")
	ErrRecipientRequired   = errors.New("recipient email is required")
	ErrReminderInPast      = errors.New("reminder time must be in the future")
	ErrEmptyDescription    = errors.New("task description is required")
	ErrInvalidPriority     = errors.New("priority must be between 1 and 5")
	ErrInvalidDueDate      = errors.New("invalid due date")
	ErrEmptyCategory       = errors.New("category name is required")
	ErrScheduleUnavailable = errors.New("schedule suggestions are not configured")
)
