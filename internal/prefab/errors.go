package prefab

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes prefab failures.
type ErrorCode string

const (
	// ErrCodePrefabNotFound indicates no prefab is registered under the id.
	ErrCodePrefabNotFound ErrorCode = "PREFAB_NOT_FOUND"

	// ErrCodeInstantiationFailed wraps any failure during instantiation.
	ErrCodeInstantiationFailed ErrorCode = "INSTANTIATION_FAILED"

	// ErrCodeValidationFailed indicates a rejected parameter. It is logged,
	// never returned from Instantiate.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// ErrCodeNotFound indicates an unknown instance id.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidPrefab indicates a prefab rejected by Register.
	ErrCodeInvalidPrefab ErrorCode = "INVALID_PREFAB"
)

// Error reports a prefab engine failure.
type Error struct {
	Code       ErrorCode
	Message    string
	PrefabID   string
	InstanceID string
	Parameter  string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Parameter != "":
		msg += fmt.Sprintf(" (prefab=%s, param=%s)", e.PrefabID, e.Parameter)
	case e.InstanceID != "":
		msg += fmt.Sprintf(" (instance=%s)", e.InstanceID)
	case e.PrefabID != "":
		msg += fmt.Sprintf(" (prefab=%s)", e.PrefabID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsPrefabNotFound reports whether err is a PREFAB_NOT_FOUND error.
func IsPrefabNotFound(err error) bool {
	return hasCode(err, ErrCodePrefabNotFound)
}

// IsInstantiationFailed reports whether err is an INSTANTIATION_FAILED error.
func IsInstantiationFailed(err error) bool {
	return hasCode(err, ErrCodeInstantiationFailed)
}

// IsNotFound reports whether err is an unknown-instance error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
