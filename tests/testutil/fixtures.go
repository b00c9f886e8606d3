package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/amercier/taskdeck-api/internal/database"
	"github.com/amercier/taskdeck-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plaintext behind every fixture account.
const DefaultPassword = "password123"

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateCompany creates a test company with default values
func (f *Fixtures) CreateCompany(t *testing.T, opts ...CompanyOption) *models.Company {
	t.Helper()
	f.counter++

	company := &models.Company{
		Name:        fmt.Sprintf("Test Company %d", f.counter),
		Teams:       []string{"backend", "frontend"},
		NumTeams:    2,
		NumManagers: 2,
	}

	for _, opt := range opts {
		opt(company)
	}

	teams, err := json.Marshal(company.Teams)
	if err != nil {
		t.Fatalf("failed to encode teams: %v", err)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO companies (name, teams, num_teams, num_managers)
		VALUES ($1, $2::jsonb, $3, $4)
		RETURNING id, name, teams, num_teams, num_managers, created_at
	`, company.Name, string(teams), company.NumTeams, company.NumManagers).Scan(
		&company.ID, &company.Name, &company.Teams,
		&company.NumTeams, &company.NumManagers, &company.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create company: %v", err)
	}

	return company
}

// CompanyOption configures a test company
type CompanyOption func(*models.Company)

// WithCompanyName sets the company's name
func WithCompanyName(name string) CompanyOption {
	return func(c *models.Company) {
		c.Name = name
	}
}

// WithTeams sets the company's team roster
func WithTeams(teams ...string) CompanyOption {
	return func(c *models.Company) {
		c.Teams = teams
	}
}

// WithLimits sets the company's capacity limits
func WithLimits(numTeams, numManagers int) CompanyOption {
	return func(c *models.Company) {
		c.NumTeams = numTeams
		c.NumManagers = numManagers
	}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Username: fmt.Sprintf("user%d", f.counter),
		Role:     models.RoleTeam,
	}

	for _, opt := range opts {
		opt(user)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role, company_id, team_name, valid_until, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, username, password_hash, role, company_id, team_name, valid_until, deleted_at, created_at
	`, user.Username, string(hash), user.Role, user.CompanyID, user.TeamName, user.ValidUntil, user.DeletedAt).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role,
		&user.CompanyID, &user.TeamName, &user.ValidUntil, &user.DeletedAt, &user.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithUsername sets the user's username
func WithUsername(username string) UserOption {
	return func(u *models.User) {
		u.Username = username
	}
}

// WithRole sets the user's role
func WithRole(role models.Role) UserOption {
	return func(u *models.User) {
		u.Role = role
	}
}

// WithCompany attaches the user to a company
func WithCompany(company *models.Company) UserOption {
	return func(u *models.User) {
		u.CompanyID = &company.ID
	}
}

// WithTeamName assigns the user to a named team
func WithTeamName(team string) UserOption {
	return func(u *models.User) {
		u.TeamName = &team
	}
}

// WithValidUntil sets the account's expiry
func WithValidUntil(validUntil time.Time) UserOption {
	return func(u *models.User) {
		u.ValidUntil = &validUntil
	}
}

// Trashed puts the account in the trash
func Trashed() UserOption {
	return func(u *models.User) {
		now := time.Now()
		u.DeletedAt = &now
	}
}

// CreateTask creates a test task in the given company
func (f *Fixtures) CreateTask(t *testing.T, company *models.Company, opts ...TaskOption) *models.Task {
	t.Helper()
	f.counter++

	task := &models.Task{
		Title:     fmt.Sprintf("Test Task %d", f.counter),
		Priority:  "medium",
		Status:    models.StatusPending,
		CompanyID: company.ID,
	}

	for _, opt := range opts {
		opt(task)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, priority, status, company_id, team_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, priority, status, company_id, team_name, deleted_at, created_at, updated_at
	`, task.Title, task.Description, task.Priority, task.Status, task.CompanyID, task.TeamName).Scan(
		&task.ID, &task.Title, &task.Description, &task.Priority, &task.Status,
		&task.CompanyID, &task.TeamName, &task.DeletedAt, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// TaskOption configures a test task
type TaskOption func(*models.Task)

// WithTitle sets the task's title
func WithTitle(title string) TaskOption {
	return func(t *models.Task) {
		t.Title = title
	}
}

// WithPriority sets the task's priority
func WithPriority(priority string) TaskOption {
	return func(t *models.Task) {
		t.Priority = priority
	}
}

// WithStatus sets the task's status
func WithStatus(status models.TaskStatus) TaskOption {
	return func(t *models.Task) {
		t.Status = status
	}
}

// ForTeam assigns the task to a named team
func ForTeam(team string) TaskOption {
	return func(t *models.Task) {
		t.TeamName = &team
	}
}

// CreateIncident creates a test incident against the given task
func (f *Fixtures) CreateIncident(t *testing.T, task *models.Task, opts ...IncidentOption) *models.Incident {
	t.Helper()
	f.counter++

	incident := &models.Incident{
		TaskID:    task.ID,
		TaskTitle: task.Title,
		CompanyID: task.CompanyID,
		TeamName:  task.TeamName,
		Message:   fmt.Sprintf("Test incident %d", f.counter),
	}

	for _, opt := range opts {
		opt(incident)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO incidents (task_id, task_title, company_id, team_name, message, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, task_id, task_title, company_id, team_name, message, created_at, resolved_at
	`, incident.TaskID, incident.TaskTitle, incident.CompanyID, incident.TeamName, incident.Message, incident.ResolvedAt).Scan(
		&incident.ID, &incident.TaskID, &incident.TaskTitle, &incident.CompanyID,
		&incident.TeamName, &incident.Message, &incident.CreatedAt, &incident.ResolvedAt,
	)
	if err != nil {
		t.Fatalf("failed to create incident: %v", err)
	}

	return incident
}

// IncidentOption configures a test incident
type IncidentOption func(*models.Incident)

// WithMessage sets the incident's message
func WithMessage(message string) IncidentOption {
	return func(i *models.Incident) {
		i.Message = message
	}
}

// Resolved marks the incident as resolved
func Resolved() IncidentOption {
	return func(i *models.Incident) {
		now := time.Now()
		i.ResolvedAt = &now
	}
}

// ReportedBy overrides the team the incident is attributed to
func ReportedBy(team string) IncidentOption {
	return func(i *models.Incident) {
		i.TeamName = &team
	}
}
