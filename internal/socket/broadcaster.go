package socket

import (
	"log"
)

// Broadcaster provides high-level methods for publishing board events.
// A nil Broadcaster discards everything.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) toRoom(projectID string, msgType MessageType, payload map[string]interface{}, excludeUserID string) {
	if b == nil || b.hub == nil {
		return
	}
	b.hub.SendToRoom(ProjectRoom(projectID), msgType, payload, excludeUserID)
}

func (b *Broadcaster) toUser(userID string, msgType MessageType, payload map[string]interface{}) {
	if b == nil || b.hub == nil || userID == "" {
		return
	}
	b.hub.SendToUser(userID, msgType, payload)
}

// ============================================
// Task Broadcasting
// ============================================

func (b *Broadcaster) BroadcastTaskCreated(projectID string, task map[string]interface{}, excludeUserID string) {
	b.toRoom(projectID, MessageTaskCreated, task, excludeUserID)
}

func (b *Broadcaster) BroadcastTaskUpdated(projectID string, task map[string]interface{}, changes []string, excludeUserID string) {
	b.toRoom(projectID, MessageTaskUpdated, map[string]interface{}{
		"task":          task,
		"changedFields": changes,
		"changedByUser": excludeUserID,
		"projectId":     projectID,
	}, excludeUserID)
}

func (b *Broadcaster) BroadcastTaskDeleted(projectID, taskID, excludeUserID string) {
	b.toRoom(projectID, MessageTaskDeleted, map[string]interface{}{
		"taskId":    taskID,
		"projectId": projectID,
	}, excludeUserID)
}

// BroadcastTaskStatusChanged carries both statuses so clients can move the
// card between columns without refetching the board.
func (b *Broadcaster) BroadcastTaskStatusChanged(projectID string, task map[string]interface{}, oldStatus, newStatus, excludeUserID string) {
	b.toRoom(projectID, MessageTaskStatusChanged, map[string]interface{}{
		"task":          task,
		"oldStatus":     oldStatus,
		"newStatus":     newStatus,
		"changedByUser": excludeUserID,
	}, excludeUserID)
}

// BroadcastTaskAssigned notifies the assigned user directly.
func (b *Broadcaster) BroadcastTaskAssigned(assigneeID string, task map[string]interface{}, assignedBy string) {
	if assigneeID == assignedBy {
		return
	}
	b.toUser(assigneeID, MessageTaskAssigned, map[string]interface{}{
		"task":       task,
		"assignedBy": assignedBy,
	})
}

func (b *Broadcaster) BroadcastTasksOverdue(projectID string, taskIDs []string) {
	log.Printf("[Broadcaster] %d overdue tasks in project %s", len(taskIDs), projectID)
	b.toRoom(projectID, MessageTaskOverdue, map[string]interface{}{
		"projectId": projectID,
		"taskIds":   taskIDs,
	}, "")
}

// ============================================
// Comment Broadcasting
// ============================================

func (b *Broadcaster) BroadcastCommentAdded(projectID, taskID string, comment map[string]interface{}, excludeUserID string) {
	b.toRoom(projectID, MessageCommentAdded, map[string]interface{}{
		"taskId":  taskID,
		"comment": comment,
	}, excludeUserID)
}

func (b *Broadcaster) BroadcastCommentDeleted(projectID, taskID, commentID, excludeUserID string) {
	b.toRoom(projectID, MessageCommentDeleted, map[string]interface{}{
		"taskId":    taskID,
		"commentId": commentID,
	}, excludeUserID)
}

// ============================================
// Project Broadcasting
// ============================================

func (b *Broadcaster) BroadcastProjectUpdated(projectID string, project map[string]interface{}, excludeUserID string) {
	b.toRoom(projectID, MessageProjectUpdated, project, excludeUserID)
}

func (b *Broadcaster) BroadcastProjectDeleted(projectID, excludeUserID string) {
	b.toRoom(projectID, MessageProjectDeleted, map[string]interface{}{
		"projectId": projectID,
	}, excludeUserID)
}

func (b *Broadcaster) BroadcastMemberAdded(projectID, userID, addedBy string) {
	b.toRoom(projectID, MessageMemberAdded, map[string]interface{}{
		"projectId": projectID,
		"userId":    userID,
		"addedBy":   addedBy,
	}, "")
}

func (b *Broadcaster) BroadcastMemberRemoved(projectID, userID, removedBy string) {
	b.toRoom(projectID, MessageMemberRemoved, map[string]interface{}{
		"projectId": projectID,
		"userId":    userID,
		"removedBy": removedBy,
	}, "")
}

// ============================================
// Invitation Broadcasting
// ============================================

// SendInvitationReceived notifies the receiver of a new invitation.
func (b *Broadcaster) SendInvitationReceived(receiverID string, invitation map[string]interface{}) {
	b.toUser(receiverID, MessageInvitationReceived, invitation)
}

// SendInvitationResponded notifies the sender of the receiver's answer.
func (b *Broadcaster) SendInvitationResponded(senderID string, invitation map[string]interface{}) {
	b.toUser(senderID, MessageInvitationResponded, invitation)
}
