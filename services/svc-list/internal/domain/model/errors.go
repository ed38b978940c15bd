package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrDuplicateID     = errors.New("duplicate id")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrPersistFailed   = errors.New("failed to persist list")
	ErrStorageDegraded = errors.New("storage degraded")
)

type InvalidInputError struct {
	Field string
}

func NewInvalidInputError(field string) *InvalidInputError {
	return &InvalidInputError{Field: field}
}

func (e *InvalidInputError) Error() string {
	switch e.Field {
	case "id", "name":
		return fmt.Sprintf("%s must be a non-empty string", e.Field)
	case "status":
		return fmt.Sprintf("status must be %q or %q", StatusActive, StatusInactive)
	case "index":
		return "index must be an integer"
	case "list":
		return "list must be an array of records"
	case "record":
		return "record must be an object with id and name"
	default:
		return fmt.Sprintf("invalid %s", e.Field)
	}
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

type DuplicateIDError struct {
	ID string
}

func NewDuplicateIDError(id string) *DuplicateIDError {
	return &DuplicateIDError{ID: id}
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("id %q already exists", e.ID)
}

func (e *DuplicateIDError) Unwrap() error {
	return ErrDuplicateID
}

type IndexOutOfRangeError struct {
	Index  int
	Length int
}

func NewIndexOutOfRangeError(index, length int) *IndexOutOfRangeError {
	return &IndexOutOfRangeError{Index: index, Length: length}
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range, list length is %d", e.Index, e.Length)
}

func (e *IndexOutOfRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

// IsClientError reports whether err is caused by the request rather than storage.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrIndexOutOfRange)
}
