package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the recoverable failure classes. Callers branch with
// errors.Is; operations reject before mutating anything.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
)

// ComplianceLockedError reports a close attempt denied by the gate. It is an
// expected user-facing outcome, not a system fault; Missing carries the
// number of required steps still incomplete.
type ComplianceLockedError struct {
	Missing int
}

func (e *ComplianceLockedError) Error() string {
	return fmt.Sprintf("compliance lock: %d required steps are missing", e.Missing)
}

// PersistenceError reports a durable sink failure. It is fatal to the
// operation that triggered it but not to the process; when it wraps a save
// failure the in-memory mutation has been applied and is at risk.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
