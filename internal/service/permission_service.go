package service

import (
	"github.com/samber/lo"

	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

// ============================================
// Capabilities
// ============================================

// Capability names one guarded action. Every permission decision in the
// service layer goes through Can.
type Capability string

const (
	CapViewProject      Capability = "project:view"
	CapManageProject    Capability = "project:manage"
	CapCreateTask       Capability = "task:create"
	CapUpdateTaskStatus Capability = "task:update_status"
	CapEditTask         Capability = "task:edit"
	CapReassignTask     Capability = "task:reassign"
	CapDeleteTask       Capability = "task:delete"
	CapComment          Capability = "comment:write"
	CapDeleteComment    Capability = "comment:delete"
	CapInvite           Capability = "invitation:send"
)

// Target is what a capability is checked against. Fields a capability
// does not need may be nil.
type Target struct {
	Project *repository.Project
	Task    *repository.Task
	Comment *repository.TaskComment
}

// Can reports whether sess holds capability c on target. Missing inputs
// and unknown capabilities resolve to false.
func Can(sess *session.Session, c Capability, target Target) bool {
	if sess == nil || sess.UserID == "" || target.Project == nil {
		return false
	}
	p := target.Project

	switch c {
	case CapViewProject:
		return sess.HasRole(types.RoleAdmin) || IsParticipant(sess, p)
	case CapManageProject, CapCreateTask, CapDeleteTask, CapReassignTask, CapInvite:
		return IsProjectManager(sess, p)
	case CapUpdateTaskStatus, CapEditTask:
		return CanMutateTask(sess, p, target.Task)
	case CapComment:
		return IsParticipant(sess, p)
	case CapDeleteComment:
		return CanDeleteComment(sess, p, target.Comment)
	}
	return false
}

// ============================================
// Project relations
// ============================================

func refIs(ref *string, userID string) bool {
	return ref != nil && *ref != "" && *ref == userID
}

// IsProjectManager requires both a manager role (pm or admin) and being
// named as the project's manager, pm or team lead.
func IsProjectManager(sess *session.Session, p *repository.Project) bool {
	if sess == nil || p == nil || sess.UserID == "" {
		return false
	}
	if !sess.HasAnyRole(types.RolePM, types.RoleAdmin) {
		return false
	}
	return refIs(p.ManagerID, sess.UserID) ||
		refIs(p.PMID, sess.UserID) ||
		refIs(p.TeamLeadID, sess.UserID)
}

func IsTeamMember(sess *session.Session, p *repository.Project) bool {
	if sess == nil || p == nil || sess.UserID == "" {
		return false
	}
	return lo.Contains(p.TeamMembers, sess.UserID)
}

func IsProjectCustomer(sess *session.Session, p *repository.Project) bool {
	if sess == nil || p == nil {
		return false
	}
	return refIs(p.CustomerID, sess.UserID)
}

// IsParticipant is true for anyone named on the project, regardless of role.
func IsParticipant(sess *session.Session, p *repository.Project) bool {
	if sess == nil || p == nil {
		return false
	}
	return IsProjectManager(sess, p) ||
		refIs(p.ManagerID, sess.UserID) ||
		refIs(p.PMID, sess.UserID) ||
		refIs(p.TeamLeadID, sess.UserID) ||
		IsTeamMember(sess, p) ||
		IsProjectCustomer(sess, p)
}

// CanMutateTask lets managers change any task and team members change only
// the tasks assigned to them.
func CanMutateTask(sess *session.Session, p *repository.Project, task *repository.Task) bool {
	if IsProjectManager(sess, p) {
		return true
	}
	if task == nil || !IsTeamMember(sess, p) {
		return false
	}
	return refIs(task.AssigneeID, sess.UserID)
}

func CanDeleteComment(sess *session.Session, p *repository.Project, comment *repository.TaskComment) bool {
	if comment == nil || sess == nil {
		return false
	}
	return comment.UserID == sess.UserID || IsProjectManager(sess, p)
}

// Relation summarises the caller's strongest tie to a project.
func Relation(sess *session.Session, p *repository.Project) types.ProjectRelation {
	switch {
	case IsProjectManager(sess, p):
		return types.RelationManager
	case sess != nil && p != nil && refIs(p.TeamLeadID, sess.UserID):
		return types.RelationTeamLead
	case IsTeamMember(sess, p):
		return types.RelationTeamMember
	case IsProjectCustomer(sess, p):
		return types.RelationCustomer
	}
	return types.RelationNone
}
