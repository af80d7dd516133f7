package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var (
	allStatuses   = []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	allRoles      = []Role{RoleClient, RoleBusiness}
	allOperations = []Operation{OpConfirm, OpReject, OpCancel, OpComplete}
)

func TestResolveTransition(t *testing.T) {
	tests := []struct {
		op      Operation
		role    Role
		from    BookingStatus
		want    BookingStatus
		wantErr error
	}{
		{op: OpConfirm, role: RoleBusiness, from: StatusPending, want: StatusConfirmed},
		{op: OpReject, role: RoleBusiness, from: StatusPending, want: StatusCancelled},
		{op: OpReject, role: RoleBusiness, from: StatusConfirmed, want: StatusCancelled},
		{op: OpCancel, role: RoleClient, from: StatusPending, want: StatusCancelled},
		{op: OpComplete, role: RoleBusiness, from: StatusConfirmed, want: StatusCompleted},

		{op: OpCancel, role: RoleClient, from: StatusConfirmed, wantErr: ErrInvalidTransition},
		{op: OpConfirm, role: RoleBusiness, from: StatusConfirmed, wantErr: ErrInvalidTransition},
		{op: OpComplete, role: RoleBusiness, from: StatusPending, wantErr: ErrInvalidTransition},
		{op: OpReject, role: RoleBusiness, from: StatusCompleted, wantErr: ErrInvalidTransition},
		{op: OpConfirm, role: RoleClient, from: StatusPending, wantErr: ErrAuthorization},
		{op: OpComplete, role: RoleClient, from: StatusConfirmed, wantErr: ErrAuthorization},
		{op: OpCancel, role: RoleBusiness, from: StatusPending, wantErr: ErrAuthorization},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.op)+"/"+string(tt.from), func(t *testing.T) {
			got, err := ResolveTransition(tt.op, tt.role, tt.from)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOperationFor(t *testing.T) {
	tests := []struct {
		role    Role
		target  BookingStatus
		want    Operation
		wantErr error
	}{
		{role: RoleBusiness, target: StatusConfirmed, want: OpConfirm},
		{role: RoleBusiness, target: StatusCancelled, want: OpReject},
		{role: RoleBusiness, target: StatusCompleted, want: OpComplete},
		{role: RoleClient, target: StatusCancelled, want: OpCancel},
		{role: RoleClient, target: StatusConfirmed, wantErr: ErrAuthorization},
		{role: RoleClient, target: StatusCompleted, wantErr: ErrAuthorization},
		{role: RoleBusiness, target: StatusPending, wantErr: ErrInvalidTransition},
		{role: RoleClient, target: StatusPending, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"->"+string(tt.target), func(t *testing.T) {
			got, err := OperationFor(tt.role, tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Terminal statuses never move and no edge leads back to pending
func TestTransitionPolicy_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		op := rapid.SampledFrom(allOperations).Draw(t, "op")
		role := rapid.SampledFrom(allRoles).Draw(t, "role")
		from := rapid.SampledFrom(allStatuses).Draw(t, "from")

		to, err := ResolveTransition(op, role, from)
		if from.IsTerminal() && err == nil {
			t.Fatalf("%s moved terminal booking %s to %s", role, from, to)
		}
		if err == nil && to == StatusPending {
			t.Fatalf("%s/%s from %s returned to pending", role, op, from)
		}
		if err != nil && !RoleCan(role, op) {
			assert.ErrorIs(t, err, ErrAuthorization)
		}
	})
}

// Every successful OperationFor leads to a policy edge reaching that target
func TestOperationFor_ConsistentWithResolve(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		role := rapid.SampledFrom(allRoles).Draw(t, "role")
		target := rapid.SampledFrom(allStatuses).Draw(t, "target")

		op, err := OperationFor(role, target)
		if err != nil {
			return
		}

		reached := false
		for _, from := range allStatuses {
			if to, err := ResolveTransition(op, role, from); err == nil && to == target {
				reached = true
			}
		}
		if !reached {
			t.Fatalf("operation %s for %s never reaches %s", op, role, target)
		}
	})
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, status)

	_, err = ParseBookingStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("BUSINESS")
	require.NoError(t, err)
	assert.Equal(t, RoleBusiness, role)

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
