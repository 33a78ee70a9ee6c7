// internal/repository/repository.go
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// validID reports whether id fits a UUID column. Lookups with any other id
// match nothing instead of failing with an input syntax error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ============================================
// Models / Entities
// ============================================

type User struct {
	ID             string
	Email          string
	Password       string
	Name           string
	Roles          []string
	Rate           decimal.NullDecimal
	Specialization *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Project references users by id only. ManagerID and PMID are both
// manager references; PMID is the legacy name some records carry.
type Project struct {
	ID          string
	Title       string
	Description *string
	Statuses    []string
	ManagerID   *string
	PMID        *string
	TeamLeadID  *string
	CustomerID  *string
	TeamMembers []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ============================================
// Repository Interfaces
// ============================================

// Find* methods return (nil, nil) when nothing matches.

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	FindByRole(ctx context.Context, role string) ([]*User, error)
	Update(ctx context.Context, user *User) error
	UpdateRoles(ctx context.Context, userID string, roles []string) error
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteUserRefreshTokens(ctx context.Context, userID string) error
	DeleteExpiredRefreshTokens(ctx context.Context) (int, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindAll(ctx context.Context) ([]*Project, error)
	// FindByUserID returns projects where the user is manager, pm,
	// team lead, customer or team member.
	FindByUserID(ctx context.Context, userID string) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error
	// AddTeamMember appends userID to team_members unless already present.
	AddTeamMember(ctx context.Context, projectID, userID string) error
	RemoveTeamMember(ctx context.Context, projectID, userID string) error
}

// ============================================
// Repositories Container
// ============================================

type Repositories struct {
	UserRepo        UserRepository
	ProjectRepo     ProjectRepository
	TaskRepo        TaskRepository
	TaskCommentRepo TaskCommentRepository
	InvitationRepo  InvitationRepository
	ApplicationRepo ApplicationRepository
}

// NewRepositories creates in-memory repositories (for testing/fallback)
func NewRepositories() *Repositories {
	return &Repositories{
		UserRepo:        newInMemoryUserRepository(),
		ProjectRepo:     newInMemoryProjectRepository(),
		TaskRepo:        newInMemoryTaskRepository(),
		TaskCommentRepo: newInMemoryTaskCommentRepository(),
		InvitationRepo:  newInMemoryInvitationRepository(),
		ApplicationRepo: newInMemoryApplicationRepository(),
	}
}

// NewPgRepositories creates PostgreSQL-backed repositories. Tasks and
// comments go through database/sql, everything else through the pool.
func NewPgRepositories(pool *pgxpool.Pool, db *sql.DB) *Repositories {
	return &Repositories{
		UserRepo:        NewUserRepository(pool),
		ProjectRepo:     NewProjectRepository(pool),
		TaskRepo:        NewTaskRepository(db),
		TaskCommentRepo: NewTaskCommentRepository(db),
		InvitationRepo:  NewInvitationRepository(pool),
		ApplicationRepo: NewApplicationRepository(pool),
	}
}
