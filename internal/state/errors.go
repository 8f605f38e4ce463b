package state

import "errors"

var (
	ErrUnknownStudio      = errors.New("unknown studio")
	ErrUnknownLine        = errors.New("unknown call line")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidStatus      = errors.New("invalid call line status")
	ErrInvalidTime        = errors.New("invalid timer value")
)
