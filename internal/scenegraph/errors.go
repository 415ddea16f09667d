package scenegraph

import (
	"errors"
	"fmt"
)

// GraphErrorCode categorizes structural failures.
type GraphErrorCode string

const (
	// ErrCodeNotFound indicates a node id absent from the graph.
	ErrCodeNotFound GraphErrorCode = "NOT_FOUND"

	// ErrCodeCycleRejected indicates a move under the node itself or a descendant.
	ErrCodeCycleRejected GraphErrorCode = "CYCLE_REJECTED"

	// ErrCodeDuplicateID indicates an insertion whose ids are already indexed.
	ErrCodeDuplicateID GraphErrorCode = "DUPLICATE_ID"

	// ErrCodeInvalidNode indicates a nil node or a node without an id.
	ErrCodeInvalidNode GraphErrorCode = "INVALID_NODE"
)

// Sentinels for errors.Is matching.
var (
	ErrNotFound      = errors.New("node not found")
	ErrCycleRejected = errors.New("move would create a cycle")
	ErrDuplicateID   = errors.New("duplicate node id")
	ErrInvalidNode   = errors.New("invalid node")
)

// GraphError reports a rejected structural operation.
type GraphError struct {
	Code    GraphErrorCode
	Op      string
	NodeID  string
	Message string
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s: %s: %s (node=%s)", e.Op, e.Code, e.Message, e.NodeID)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Message)
}

// Is maps codes onto the package sentinels.
func (e *GraphError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == ErrCodeNotFound
	case ErrCycleRejected:
		return e.Code == ErrCodeCycleRejected
	case ErrDuplicateID:
		return e.Code == ErrCodeDuplicateID
	case ErrInvalidNode:
		return e.Code == ErrCodeInvalidNode
	}
	return false
}

func notFound(op, id string) *GraphError {
	return &GraphError{Code: ErrCodeNotFound, Op: op, NodeID: id, Message: "no node with this id"}
}

func duplicate(op, id string) *GraphError {
	return &GraphError{Code: ErrCodeDuplicateID, Op: op, NodeID: id, Message: "id already present in graph"}
}

func invalid(op, msg string) *GraphError {
	return &GraphError{Code: ErrCodeInvalidNode, Op: op, Message: msg}
}
