package handlers

import (
	"context"
	"time"

	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/amercier/taskdeck-api/internal/services"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	CheckActive(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, p services.CreateUserParams) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uuid.UUID, p services.UpdateUserParams) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListTrash(ctx context.Context) ([]models.User, error)
	Restore(ctx context.Context, id uuid.UUID, validUntil *time.Time) error
	Purge(ctx context.Context, id uuid.UUID) error
	SweepExpired(ctx context.Context) ([]models.User, error)
}

// CompanyServiceInterface defines the methods used by handlers from CompanyService
type CompanyServiceInterface interface {
	List(ctx context.Context) ([]models.Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	FirstCompany(ctx context.Context) (*models.Company, error)
	Create(ctx context.Context, p services.CompanyParams) (*models.Company, error)
	Update(ctx context.Context, id uuid.UUID, p services.CompanyParams) (*models.Company, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskServiceInterface defines the methods used by handlers from TaskService
type TaskServiceInterface interface {
	ListForScope(ctx context.Context, scope models.Scope) ([]models.Task, error)
	History(ctx context.Context, scope models.Scope) ([]models.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	Create(ctx context.Context, p services.CreateTaskParams) (*models.Task, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus, note string, reporterTeam *string) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// IncidentServiceInterface defines the methods used by handlers from IncidentService
type IncidentServiceInterface interface {
	ListOpenForScope(ctx context.Context, scope models.Scope) ([]models.Incident, error)
	ListResolvedGrouped(ctx context.Context, scope models.Scope) (map[string][]models.Incident, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Create(ctx context.Context, task *models.Task, message string, reporterTeam *string) (*models.Incident, error)
	Resolve(ctx context.Context, id uuid.UUID) (*models.Incident, error)
}
