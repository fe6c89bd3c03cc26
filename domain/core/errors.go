package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrQuestionNotFound = fmt.Errorf("%w: question", ErrNotFound)
	ErrNodeNotFound     = fmt.Errorf("%w: node", ErrNotFound)

	// Graph validation errors (fatal for the question, never retried)
	ErrDanglingEdge = errors.New("edge references unknown node")
	ErrSelfLoop     = errors.New("self-loop edge not supported")
	ErrEmptyGraph   = errors.New("graph has no nodes")

	// Forecast errors
	ErrForecastFailed    = errors.New("forecast generation failed")
	ErrMalformedResponse = errors.New("malformed model response")
)

// NewValidationError builds a field-level validation error
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// NewDanglingEdgeError reports an edge endpoint missing from the node set
func NewDanglingEdgeError(endpoint string, nodeID string) error {
	return fmt.Errorf("%w: %s node %q", ErrDanglingEdge, endpoint, nodeID)
}
