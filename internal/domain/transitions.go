package domain

import "fmt"

// Operation is a named booking status change
type Operation string

const (
	OpConfirm  Operation = "confirm"
	OpReject   Operation = "reject"
	OpCancel   Operation = "cancel"
	OpComplete Operation = "complete"
)

type transitionKey struct {
	op   Operation
	role Role
	from BookingStatus
}

// transitionPolicy is the only place that decides who may move a booking where.
// Absent keys are denied.
var transitionPolicy = map[transitionKey]BookingStatus{
	{OpConfirm, RoleBusiness, StatusPending}:    StatusConfirmed,
	{OpReject, RoleBusiness, StatusPending}:     StatusCancelled,
	{OpReject, RoleBusiness, StatusConfirmed}:   StatusCancelled,
	{OpCancel, RoleClient, StatusPending}:       StatusCancelled,
	{OpComplete, RoleBusiness, StatusConfirmed}: StatusCompleted,
}

// OperationFor derives the operation a role performs to reach the target status.
// A target reachable only by another role is an authorization error.
func OperationFor(role Role, target BookingStatus) (Operation, error) {
	reachable := false
	for key, to := range transitionPolicy {
		if to != target {
			continue
		}
		reachable = true
		if key.role == role {
			return key.op, nil
		}
	}
	if reachable {
		return "", fmt.Errorf("%w: role %s may not set status %s", ErrAuthorization, role, target)
	}
	return "", fmt.Errorf("%w: status %s is not a transition target", ErrInvalidTransition, target)
}

// ResolveTransition checks the policy for (op, role, current) and returns the new status
func ResolveTransition(op Operation, role Role, current BookingStatus) (BookingStatus, error) {
	if to, ok := transitionPolicy[transitionKey{op, role, current}]; ok {
		return to, nil
	}
	if !RoleCan(role, op) {
		return "", fmt.Errorf("%w: role %s may not %s", ErrAuthorization, role, op)
	}
	return "", fmt.Errorf("%w: cannot %s a %s booking", ErrInvalidTransition, op, current)
}

// RoleCan returns true if the role may perform the operation from some status
func RoleCan(role Role, op Operation) bool {
	for key := range transitionPolicy {
		if key.op == op && key.role == role {
			return true
		}
	}
	return false
}
