package types

import (
	"strings"

	"github.com/samber/lo"
)

// Role is one of the closed set of role tags a user can hold.
type Role string

const (
	RoleAdmin    Role = "admin"
	RolePM       Role = "pm"
	RoleExecutor Role = "executor"
	RoleCustomer Role = "customer"
)

var ValidRoles = []Role{RoleAdmin, RolePM, RoleExecutor, RoleCustomer}

// ParseRole normalizes a raw role tag. Unknown tags report ok=false.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if lo.Contains(ValidRoles, r) {
		return r, true
	}
	return "", false
}

// RoleSet is the set of role tags held by a principal.
type RoleSet []Role

// ParseRoles keeps the recognised tags of raw and drops everything else.
func ParseRoles(raw []string) RoleSet {
	set := RoleSet{}
	for _, s := range raw {
		if r, ok := ParseRole(s); ok && !lo.Contains(set, r) {
			set = append(set, r)
		}
	}
	return set
}

func (rs RoleSet) Has(r Role) bool {
	return lo.Contains(rs, r)
}

func (rs RoleSet) HasAny(roles ...Role) bool {
	return lo.SomeBy(roles, rs.Has)
}

func (rs RoleSet) Strings() []string {
	return lo.Map(rs, func(r Role, _ int) string { return string(r) })
}

// Task Status values. These are also the board columns, in order.
const (
	StatusBacklog    = "backlog"
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

var BoardColumns = []string{
	StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone,
}

func IsBoardColumn(status string) bool {
	return lo.Contains(BoardColumns, status)
}

// Task Priority values
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var ValidPriorities = []string{
	PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical,
}

func IsValidPriority(priority string) bool {
	return lo.Contains(ValidPriorities, priority)
}

// InvitationKind distinguishes the two invitation shapes.
type InvitationKind string

const (
	// InvitationKindTeam resolves to accepted or rejected.
	InvitationKindTeam InvitationKind = "team"
	// InvitationKindSimple resolves to approved or rejected.
	InvitationKindSimple InvitationKind = "simple"
)

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationApproved = "approved"
	InvitationRejected = "rejected"
)

// Invitation response actions
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// AcceptedStatus returns the status an accepted invitation of this kind ends in.
func (k InvitationKind) AcceptedStatus() string {
	if k == InvitationKindSimple {
		return InvitationApproved
	}
	return InvitationAccepted
}

// Application Status values
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Project relationships used to gate mutations.
type ProjectRelation string

const (
	RelationManager    ProjectRelation = "manager"
	RelationTeamLead   ProjectRelation = "team_lead"
	RelationTeamMember ProjectRelation = "team_member"
	RelationCustomer   ProjectRelation = "customer"
	RelationNone       ProjectRelation = "none"
)
