package assets

import (
	"errors"
	"fmt"
	"strings"
)

// ResolveErrorCode categorizes resolution failures.
type ResolveErrorCode string

const (
	// ErrCodeNotFound indicates no asset (or palette key) with the id exists.
	ErrCodeNotFound ResolveErrorCode = "NOT_FOUND"

	// ErrCodeTypeMismatch indicates the stored type disagrees with the reference.
	ErrCodeTypeMismatch ResolveErrorCode = "TYPE_MISMATCH"

	// ErrCodeCyclicReference indicates an asset transitively references itself.
	ErrCodeCyclicReference ResolveErrorCode = "CYCLIC_REFERENCE"

	// ErrCodeUnsupported indicates an asset type without a resolver.
	ErrCodeUnsupported ResolveErrorCode = "UNSUPPORTED"

	// ErrCodeInvalid indicates an asset rejected by Add.
	ErrCodeInvalid ResolveErrorCode = "INVALID_ASSET"
)

// ResolveError reports why a value could not be resolved.
type ResolveError struct {
	Code    ResolveErrorCode
	Message string

	// AssetID is the asset whose resolution failed.
	AssetID string

	// Chain lists the asset ids being resolved when the failure occurred,
	// outermost first. For cycles it ends with the repeated id.
	Chain []string
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	if len(e.Chain) > 1 {
		return fmt.Sprintf("%s: %s (chain=%s)", e.Code, e.Message, strings.Join(e.Chain, " -> "))
	}
	if e.AssetID != "" {
		return fmt.Sprintf("%s: %s (asset=%s)", e.Code, e.Message, e.AssetID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a NOT_FOUND resolution error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsCyclicReference reports whether err is a CYCLIC_REFERENCE error.
func IsCyclicReference(err error) bool {
	return hasCode(err, ErrCodeCyclicReference)
}

// IsTypeMismatch reports whether err is a TYPE_MISMATCH error.
func IsTypeMismatch(err error) bool {
	return hasCode(err, ErrCodeTypeMismatch)
}

func hasCode(err error, code ResolveErrorCode) bool {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// FailedID returns the asset id carried by a resolution error, or "".
func FailedID(err error) string {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.AssetID
	}
	return ""
}
