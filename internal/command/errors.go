package command

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for command registration and execution.
var (
	// ErrMissingMetadata is returned when a descriptor lacks a required field.
	ErrMissingMetadata = errors.New("missing required command metadata")

	// ErrDuplicateCommand is returned when two definitions share an ID.
	ErrDuplicateCommand = errors.New("duplicate command id")

	// ErrUnresolvedParent is returned when a parent reference cannot be resolved.
	ErrUnresolvedParent = errors.New("unresolved parent command")

	// ErrCyclicParent is returned when a parent chain revisits itself.
	ErrCyclicParent = errors.New("cyclic parent chain")

	// ErrRegistration is returned when the host table refuses a root command.
	ErrRegistration = errors.New("host registration failed")

	// ErrUsage is returned by handlers to make the node send its usage string.
	ErrUsage = errors.New("invalid command usage")
)

// MissingRequiredMetadataError reports a descriptor that cannot be registered.
type MissingRequiredMetadataError struct {
	ID    string
	Field string
}

// Error returns the error message.
func (e *MissingRequiredMetadataError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("command: %s is required", e.Field)
	}
	return fmt.Sprintf("command %q: %s is required", e.ID, e.Field)
}

// Unwrap returns ErrMissingMetadata.
func (e *MissingRequiredMetadataError) Unwrap() error {
	return ErrMissingMetadata
}

// DuplicateCommandError reports a definition whose ID is already taken.
type DuplicateCommandError struct {
	ID string
}

// Error returns the error message.
func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q: id already defined", e.ID)
}

// Unwrap returns ErrDuplicateCommand.
func (e *DuplicateCommandError) Unwrap() error {
	return ErrDuplicateCommand
}

// UnresolvedParentError reports a parent reference that does not lead to a
// registered command. Err is set when the parent exists but failed itself.
type UnresolvedParentError struct {
	ID     string
	Parent string
	Err    error
}

// Error returns the error message.
func (e *UnresolvedParentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("command %q: parent %q failed: %v", e.ID, e.Parent, e.Err)
	}
	return fmt.Sprintf("command %q: parent %q not found", e.ID, e.Parent)
}

// Unwrap returns the sentinel and the parent's failure, if any.
func (e *UnresolvedParentError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnresolvedParent, e.Err}
	}
	return []error{ErrUnresolvedParent}
}

// CyclicParentError reports a parent chain that loops. Chain starts and ends
// with the same ID.
type CyclicParentError struct {
	Chain []string
}

// Error returns the error message.
func (e *CyclicParentError) Error() string {
	return fmt.Sprintf("cyclic parent chain: %s", strings.Join(e.Chain, " -> "))
}

// Unwrap returns ErrCyclicParent.
func (e *CyclicParentError) Unwrap() error {
	return ErrCyclicParent
}

// involves reports whether id is a member of the cycle.
func (e *CyclicParentError) involves(id string) bool {
	for _, c := range e.Chain {
		if c == id {
			return true
		}
	}
	return false
}

// RegistrationError wraps an error returned by the host table.
type RegistrationError struct {
	Label string
	Name  string
	Err   error
}

// Error returns the error message.
func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register %s:%s: %v", e.Label, e.Name, e.Err)
}

// Unwrap returns the sentinel and the host error.
func (e *RegistrationError) Unwrap() []error {
	return []error{ErrRegistration, e.Err}
}
