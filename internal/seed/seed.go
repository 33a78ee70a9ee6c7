package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

const DefaultPassword = "password123"

// SeedData creates one user per role, a project with a small board, a
// pending invitation and a pending application. It does nothing when users
// already exist.
func SeedData(ctx context.Context, repos *repository.Repositories) error {
	users, err := repos.UserRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	if len(users) > 0 {
		log.Println("[Seed] Data already exists, skipping...")
		return nil
	}

	log.Println("[Seed] Creating initial data...")

	password, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// ============================================
	// USERS (one per role, plus a second executor)
	// ============================================
	newUser := func(name, email string, roles ...types.Role) (*repository.User, error) {
		u := &repository.User{
			Email:    email,
			Password: string(password),
			Name:     name,
			Roles:    types.RoleSet(roles).Strings(),
		}
		if err := repos.UserRepo.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", email, err)
		}
		return u, nil
	}

	admin, err := newUser("Asha Admin", "admin@taska.local", types.RoleAdmin)
	if err != nil {
		return err
	}
	pm, err := newUser("Pavel Manager", "pm@taska.local", types.RolePM)
	if err != nil {
		return err
	}
	dev, err := newUser("Elena Executor", "executor@taska.local", types.RoleExecutor)
	if err != nil {
		return err
	}
	invitee, err := newUser("Ivan Executor", "executor2@taska.local", types.RoleExecutor)
	if err != nil {
		return err
	}
	customer, err := newUser("Carla Customer", "customer@taska.local", types.RoleCustomer)
	if err != nil {
		return err
	}

	dev.Rate = decimal.NewNullDecimal(decimal.RequireFromString("35.00"))
	dev.Specialization = stringPtr("backend")
	if err := repos.UserRepo.Update(ctx, dev); err != nil {
		return err
	}

	log.Printf("[Seed] Created 5 users (admin, pm, 2 executors, customer), password %q", DefaultPassword)

	// ============================================
	// PROJECT
	// ============================================
	project := &repository.Project{
		Title:       "Customer Portal",
		Description: stringPtr("Self-service portal for order tracking"),
		Statuses:    append([]string{}, types.BoardColumns...),
		ManagerID:   &pm.ID,
		PMID:        &pm.ID,
		CustomerID:  &customer.ID,
		TeamMembers: []string{dev.ID},
	}
	if err := repos.ProjectRepo.Create(ctx, project); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	// ============================================
	// TASKS (one per column)
	// ============================================
	due := time.Now().Add(72 * time.Hour)
	tasks := []*repository.Task{
		{Title: "Collect requirements", Status: types.StatusDone, Priority: types.PriorityHigh},
		{Title: "Design order API", Status: types.StatusReview, Priority: types.PriorityHigh},
		{Title: "Implement login", Status: types.StatusInProgress, Priority: types.PriorityCritical, DueDate: &due},
		{Title: "Order history page", Status: types.StatusTodo, Priority: types.PriorityMedium},
		{Title: "Dark mode", Status: types.StatusBacklog, Priority: types.PriorityLow},
	}
	for _, task := range tasks {
		task.ProjectID = project.ID
		task.CreatedBy = &pm.ID
		if task.Status != types.StatusBacklog {
			task.AssigneeID = &dev.ID
			task.AssigneeName = &dev.Name
			task.AssigneeEmail = &dev.Email
		}
		if err := repos.TaskRepo.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create task %q: %w", task.Title, err)
		}
	}

	if err := repos.TaskCommentRepo.Create(ctx, &repository.TaskComment{
		TaskID:    tasks[2].ID,
		ProjectID: project.ID,
		UserID:    pm.ID,
		Content:   "Please use the shared auth middleware.",
		Mentions:  []string{},
	}); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	// ============================================
	// INVITATION & APPLICATION
	// ============================================
	start := time.Now().Add(7 * 24 * time.Hour)
	if err := repos.InvitationRepo.Create(ctx, &repository.Invitation{
		Kind:       string(types.InvitationKindTeam),
		SenderID:   pm.ID,
		ReceiverID: invitee.ID,
		ProjectID:  project.ID,
		Rate:       decimal.NewNullDecimal(decimal.RequireFromString("30.00")),
		StartDate:  &start,
		Duration:   stringPtr("3 months"),
		Message:    stringPtr("We need help with the order pages."),
		Status:     types.InvitationPending,
	}); err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	deadline := time.Now().Add(90 * 24 * time.Hour)
	if err := repos.ApplicationRepo.Create(ctx, &repository.Application{
		RequesterID: customer.ID,
		Title:       "Mobile app",
		Description: stringPtr("Companion app for the customer portal"),
		Budget:      decimal.NewNullDecimal(decimal.RequireFromString("12000")),
		Deadline:    &deadline,
		Status:      types.ApplicationPending,
	}); err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	log.Printf("[Seed] Created project %q with %d tasks; admin is %s", project.Title, len(tasks), admin.Email)
	return nil
}

func stringPtr(s string) *string {
	return &s
}
