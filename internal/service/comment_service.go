package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/socket"
)

var mentionPattern = regexp.MustCompile(`@([\w.\-]+)`)

// ============================================
// Comment Service
// ============================================

type CommentService interface {
	AddComment(ctx context.Context, sess *session.Session, projectID, taskID, content string, mentions []string) (*repository.TaskComment, error)
	ListComments(ctx context.Context, sess *session.Session, projectID, taskID string) ([]*repository.TaskComment, error)
	DeleteComment(ctx context.Context, sess *session.Session, projectID, taskID, commentID string) error
}

type commentService struct {
	commentRepo repository.TaskCommentRepository
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	broadcaster *socket.Broadcaster
}

func NewCommentService(
	commentRepo repository.TaskCommentRepository,
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	broadcaster *socket.Broadcaster,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		broadcaster: broadcaster,
	}
}

// AddComment requires the task to exist. Mentions given by the client are
// stored as is; when none are given they are taken from @handles in content.
func (s *commentService) AddComment(ctx context.Context, sess *session.Session, projectID, taskID, content string, mentions []string) (*repository.TaskComment, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(sess, CapComment, Target{Project: project}) {
		return nil, ErrForbidden
	}
	if _, err := loadProjectTask(ctx, s.taskRepo, projectID, taskID); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrInvalidInput
	}
	if len(mentions) == 0 {
		mentions = ExtractMentions(content)
	}

	comment := &repository.TaskComment{
		TaskID:    taskID,
		ProjectID: projectID,
		UserID:    sess.UserID,
		Content:   content,
		Mentions:  mentions,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.broadcaster.BroadcastCommentAdded(projectID, taskID, map[string]interface{}{
		"id":        comment.ID,
		"userId":    comment.UserID,
		"content":   comment.Content,
		"mentions":  comment.Mentions,
		"createdAt": comment.CreatedAt,
	}, sess.UserID)
	return comment, nil
}

// ListComments does not require the task to still exist: threads of
// deleted tasks remain readable.
func (s *commentService) ListComments(ctx context.Context, sess *session.Session, projectID, taskID string) ([]*repository.TaskComment, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if !Can(sess, CapComment, Target{Project: project}) {
		return nil, ErrForbidden
	}

	comments, err := s.commentRepo.FindByTaskID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return lo.Filter(comments, func(c *repository.TaskComment, _ int) bool {
		return c.ProjectID == projectID
	}), nil
}

func (s *commentService) DeleteComment(ctx context.Context, sess *session.Session, projectID, taskID, commentID string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	project, err := loadProject(ctx, s.projectRepo, projectID)
	if err != nil {
		return err
	}

	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to load comment: %w", err)
	}
	if comment == nil || comment.ProjectID != projectID || comment.TaskID != taskID {
		return ErrNotFound
	}
	if !Can(sess, CapDeleteComment, Target{Project: project, Comment: comment}) {
		return ErrForbidden
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	s.broadcaster.BroadcastCommentDeleted(projectID, taskID, commentID, sess.UserID)
	return nil
}

// ExtractMentions returns the distinct @handles in content, in order.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	return lo.Uniq(lo.Map(matches, func(m []string, _ int) string { return m[1] }))
}
