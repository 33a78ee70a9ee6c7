package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Invitation covers both invitation shapes. Team invitations carry
// terms (rate, start date, duration); simple ones only a message.
type Invitation struct {
	ID          string
	Kind        string // team, simple
	SenderID    string
	ReceiverID  string
	ProjectID   string
	Rate        decimal.NullDecimal
	StartDate   *time.Time
	Duration    *string
	Message     *string
	Attachment  *string
	Status      string // pending, accepted|approved, rejected
	RespondedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type InvitationRepository interface {
	Create(ctx context.Context, invitation *Invitation) error
	FindByID(ctx context.Context, id string) (*Invitation, error)
	FindByReceiverID(ctx context.Context, receiverID string) ([]*Invitation, error)
	FindBySenderID(ctx context.Context, senderID string) ([]*Invitation, error)
	FindByProjectID(ctx context.Context, projectID string) ([]*Invitation, error)
	// UpdateStatus overwrites the status whatever it currently is.
	UpdateStatus(ctx context.Context, id, status string) error
}

type pgInvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) InvitationRepository {
	return &pgInvitationRepository{pool: pool}
}

const invitationColumns = `
	id, kind, sender_id, receiver_id, project_id, rate, start_date, duration,
	message, attachment, status, responded_at, created_at, updated_at`

func scanInvitation(row pgx.Row) (*Invitation, error) {
	inv := &Invitation{}
	err := row.Scan(
		&inv.ID, &inv.Kind, &inv.SenderID, &inv.ReceiverID, &inv.ProjectID, &inv.Rate,
		&inv.StartDate, &inv.Duration, &inv.Message, &inv.Attachment, &inv.Status,
		&inv.RespondedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *pgInvitationRepository) Create(ctx context.Context, invitation *Invitation) error {
	query := `
		INSERT INTO invitations (kind, sender_id, receiver_id, project_id, rate, start_date, duration, message, attachment, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		invitation.Kind, invitation.SenderID, invitation.ReceiverID, invitation.ProjectID,
		invitation.Rate, invitation.StartDate, invitation.Duration, invitation.Message,
		invitation.Attachment, invitation.Status,
	).Scan(&invitation.ID, &invitation.CreatedAt, &invitation.UpdatedAt)
}

func (r *pgInvitationRepository) FindByID(ctx context.Context, id string) (*Invitation, error) {
	if !validID(id) {
		return nil, nil
	}
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	inv, err := scanInvitation(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return inv, err
}

func (r *pgInvitationRepository) FindByReceiverID(ctx context.Context, receiverID string) ([]*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE receiver_id = $1 ORDER BY created_at DESC`
	return r.queryInvitations(ctx, query, receiverID)
}

func (r *pgInvitationRepository) FindBySenderID(ctx context.Context, senderID string) ([]*Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE sender_id = $1 ORDER BY created_at DESC`
	return r.queryInvitations(ctx, query, senderID)
}

func (r *pgInvitationRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Invitation, error) {
	if !validID(projectID) {
		return []*Invitation{}, nil
	}
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE project_id = $1 ORDER BY created_at DESC`
	return r.queryInvitations(ctx, query, projectID)
}

func (r *pgInvitationRepository) queryInvitations(ctx context.Context, query string, args ...interface{}) ([]*Invitation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (r *pgInvitationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE invitations SET
			status = $2,
			responded_at = CASE WHEN $2 = 'pending' THEN responded_at ELSE NOW() END,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, status)
	return err
}
