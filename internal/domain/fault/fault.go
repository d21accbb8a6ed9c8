// internal/domain/fault/fault.go

// Package fault defines the domain error taxonomy shared by the policy
// layer, the stores, and the HTTP boundary. Every value here is an
// expected, recoverable outcome; infrastructure failures (store
// unreachable, etc.) travel as ordinary wrapped errors and are mapped
// to a generic 500 by the boundary.
package fault

import "errors"

var (
	// Authentication / membership decisions.
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotAMember         = errors.New("not a member of this group")
	ErrMembershipInactive = errors.New("membership is not active")
	ErrInsufficientRole   = errors.New("admin permission required")

	// Workload-ratio validation.
	ErrWorkloadRange     = errors.New("workload_ratio must be greater than 0 and at most 100")
	ErrWorkloadPrecision = errors.New("workload_ratio allows at most one decimal place")
	ErrWorkloadSum       = errors.New("workload_ratio of a group's memberships must sum to 100")

	// Role / membership mutation guards.
	ErrLastAdmin           = errors.New("cannot remove or demote the last admin of the group")
	ErrDuplicateMembership = errors.New("user is already a member of this group")

	// Evaluation gates.
	ErrAssignmentNotCompleted = errors.New("assignment is not completed and cannot be evaluated")
	ErrDuplicateEvaluation    = errors.New("this assignment has already been evaluated by this user")
)

// Is is a convenience wrapper around errors.Is for call sites that
// already import this package.
func Is(err, target error) bool { return errors.Is(err, target) }
