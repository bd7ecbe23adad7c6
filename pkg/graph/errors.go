package graph

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrUnknownEndpoint = errors.New("edge endpoint not found")
	ErrInvalidData     = errors.New("invalid document")
	ErrNodeNotFound    = errors.New("node not found")
	ErrEdgeNotFound    = errors.New("edge not found")
	ErrNotMember       = errors.New("node is not a community member")
	ErrNotCommunity    = errors.New("node is not a community")
)

// Error provides structured error information for graph operations.
type Error struct {
	Op      string // Operation that failed (e.g., "InsertEdge", "CollapseCommunity")
	Entity  string // Entity type (e.g., "node", "edge", "community")
	ID      string // Entity ID (if applicable)
	Cause   error  // Underlying error
	Context string // Additional context
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != "" {
		if e.Context != "" {
			return fmt.Sprintf("%s %s %s (%s): %v", e.Op, e.Entity, e.ID, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Entity, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building Errors.
type ErrorBuilder struct {
	err Error
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: Error{Op: op}}
}

// Node sets the entity to "node" with the given ID.
func (b *ErrorBuilder) Node(id string) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.ID = id
	return b
}

// Edge sets the entity to "edge" with the given ID.
func (b *ErrorBuilder) Edge(id string) *ErrorBuilder {
	b.err.Entity = "edge"
	b.err.ID = id
	return b
}

// Community sets the entity to "community" with the given ID.
func (b *ErrorBuilder) Community(id string) *ErrorBuilder {
	b.err.Entity = "community"
	b.err.ID = id
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(ctx string) *ErrorBuilder {
	b.err.Context = ctx
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed Error.
func (b *ErrorBuilder) Build() *Error {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// UnknownEndpointError reports an edge whose source or target is not loaded.
func UnknownEndpointError(edgeID, endpoint string) error {
	return NewError("InsertEdge").Edge(edgeID).Context("endpoint " + endpoint).Cause(ErrUnknownEndpoint).Err()
}

// InvalidDataError reports a document missing a required attribute.
func InvalidDataError(op, entity, attr string) error {
	return &Error{Op: op, Entity: entity, Context: "missing " + attr, Cause: ErrInvalidData}
}

// IsUnknownEndpoint checks if an error is an unknown endpoint error.
func IsUnknownEndpoint(err error) bool {
	return errors.Is(err, ErrUnknownEndpoint)
}
