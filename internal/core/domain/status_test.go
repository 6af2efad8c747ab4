package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gc-spends/payflow_backend/internal/core/domain"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name   string
		action domain.Action
		from   domain.RequestStatus
		want   bool
	}{
		{
			name:   "submit from draft",
			action: domain.ActionSubmit,
			from:   domain.StatusDraft,
			want:   true,
		},
		{
			name:   "submit from submitted is not repeatable",
			action: domain.ActionSubmit,
			from:   domain.StatusSubmitted,
			want:   false,
		},
		{
			name:   "classify from submitted",
			action: domain.ActionClassify,
			from:   domain.StatusSubmitted,
			want:   true,
		},
		{
			name:   "classify from draft is not allowed",
			action: domain.ActionClassify,
			from:   domain.StatusDraft,
			want:   false,
		},
		{
			name:   "re-classify while still classified",
			action: domain.ActionClassify,
			from:   domain.StatusClassified,
			want:   true,
		},
		{
			name:   "approve from classified",
			action: domain.ActionApprove,
			from:   domain.StatusClassified,
			want:   true,
		},
		{
			name:   "approve from submitted skips classification",
			action: domain.ActionApprove,
			from:   domain.StatusSubmitted,
			want:   false,
		},
		{
			name:   "reject from submitted",
			action: domain.ActionReject,
			from:   domain.StatusSubmitted,
			want:   true,
		},
		{
			name:   "reject from approved is too late",
			action: domain.ActionReject,
			from:   domain.StatusApproved,
			want:   false,
		},
		{
			name:   "return from in-register",
			action: domain.ActionReturn,
			from:   domain.StatusInRegister,
			want:   true,
		},
		{
			name:   "add to registry from approved",
			action: domain.ActionAddToRegistry,
			from:   domain.StatusApproved,
			want:   true,
		},
		{
			name:   "add to registry from classified is not allowed",
			action: domain.ActionAddToRegistry,
			from:   domain.StatusClassified,
			want:   false,
		},
		{
			name:   "dispatch straight from submitted",
			action: domain.ActionDispatch,
			from:   domain.StatusSubmitted,
			want:   true,
		},
		{
			name:   "dispatch from in-register is not repeatable",
			action: domain.ActionDispatch,
			from:   domain.StatusInRegister,
			want:   false,
		},
		{
			name:   "split from approved",
			action: domain.ActionSplit,
			from:   domain.StatusApproved,
			want:   true,
		},
		{
			name:   "split from cancelled parent",
			action: domain.ActionSplit,
			from:   domain.StatusCancelled,
			want:   false,
		},
		{
			name:   "edit from rejected",
			action: domain.ActionEdit,
			from:   domain.StatusRejected,
			want:   true,
		},
		{
			name:   "edit from submitted is locked",
			action: domain.ActionEdit,
			from:   domain.StatusSubmitted,
			want:   false,
		},
		{
			name:   "to-pay from approved",
			action: domain.ActionToPay,
			from:   domain.StatusApproved,
			want:   true,
		},
		{
			name:   "decline from classified is not allowed",
			action: domain.ActionDecline,
			from:   domain.StatusClassified,
			want:   false,
		},
		{
			name:   "publish report from in-register",
			action: domain.ActionPublishReport,
			from:   domain.StatusInRegister,
			want:   true,
		},
		{
			name:   "publish report from draft is not allowed",
			action: domain.ActionPublishReport,
			from:   domain.StatusDraft,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.CanTransition(tt.action, tt.from)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllowedSources(t *testing.T) {
	assert.Equal(t, []domain.RequestStatus{domain.StatusDraft}, domain.AllowedSources(domain.ActionSubmit))
	assert.ElementsMatch(t,
		[]domain.RequestStatus{domain.StatusSubmitted, domain.StatusClassified, domain.StatusApproved},
		domain.AllowedSources(domain.ActionClassify))
	assert.Empty(t, domain.AllowedSources(domain.Action("UNKNOWN")))
}

func TestUserHasRole(t *testing.T) {
	user := domain.User{Roles: []domain.RoleCode{domain.RoleRegistrar, domain.RoleExecutor}}
	assert.True(t, user.HasRole(domain.RoleRegistrar))
	assert.False(t, user.HasRole(domain.RoleDistributor))
}
