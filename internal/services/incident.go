package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/amercier/taskdeck-api/internal/database"
	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrIncidentNotFound = errors.New("incident not found")
	ErrAlreadyResolved  = errors.New("incident already resolved")
)

// GeneralTeam buckets company-wide incidents (no team) in grouped listings.
const GeneralTeam = "general"

const incidentColumns = `id, task_id, task_title, company_id, team_name, message, created_at, resolved_at`

type IncidentService struct {
	db *database.DB
}

func NewIncidentService(db *database.DB) *IncidentService {
	return &IncidentService{db: db}
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	var i models.Incident
	err := row.Scan(
		&i.ID, &i.TaskID, &i.TaskTitle, &i.CompanyID,
		&i.TeamName, &i.Message, &i.CreatedAt, &i.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func collectIncidents(rows pgx.Rows) ([]models.Incident, error) {
	var incidents []models.Incident
	for rows.Next() {
		var i models.Incident
		if err := rows.Scan(
			&i.ID, &i.TaskID, &i.TaskTitle, &i.CompanyID,
			&i.TeamName, &i.Message, &i.CreatedAt, &i.ResolvedAt,
		); err != nil {
			return nil, err
		}
		incidents = append(incidents, i)
	}
	return incidents, rows.Err()
}

// ListOpenForScope returns unresolved incidents visible to the scope.
func (s *IncidentService) ListOpenForScope(ctx context.Context, scope models.Scope) ([]models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE resolved_at IS NULL`
	query, args := scopeFilter(scope, query, nil)
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectIncidents(rows)
}

// ListResolvedGrouped returns resolved incidents grouped by team name, with
// company-wide reports under the GeneralTeam bucket. Managers see their own
// company, admins everything.
func (s *IncidentService) ListResolvedGrouped(ctx context.Context, scope models.Scope) (map[string][]models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE resolved_at IS NOT NULL`
	query, args := scopeFilter(scope, query, nil)
	query += ` ORDER BY resolved_at DESC`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incidents, err := collectIncidents(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.Incident)
	for _, inc := range incidents {
		team := GeneralTeam
		if inc.TeamName != nil && *inc.TeamName != "" {
			team = *inc.TeamName
		}
		grouped[team] = append(grouped[team], inc)
	}
	return grouped, nil
}

func (s *IncidentService) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	incident, err := scanIncident(s.db.Pool.QueryRow(ctx, `
		SELECT `+incidentColumns+`
		FROM incidents WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIncidentNotFound
		}
		return nil, err
	}
	return incident, nil
}

// Create files a report directly against a task, without going through a
// status change.
func (s *IncidentService) Create(ctx context.Context, task *models.Task, message string, reporterTeam *string) (*models.Incident, error) {
	incident, err := scanIncident(s.db.Pool.QueryRow(ctx, `
		INSERT INTO incidents (task_id, task_title, company_id, team_name, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+incidentColumns+`
	`, task.ID, task.Title, task.CompanyID, reporterTeam, message))
	if err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}
	return incident, nil
}

// Resolve stamps the incident resolved. Resolution is one-way: a second
// resolve is rejected.
func (s *IncidentService) Resolve(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	incident, err := scanIncident(s.db.Pool.QueryRow(ctx, `
		UPDATE incidents SET resolved_at = NOW()
		WHERE id = $1 AND resolved_at IS NULL
		RETURNING `+incidentColumns+`
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// either missing or already resolved; look again to tell them apart
			existing, lookupErr := s.GetByID(ctx, id)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if existing.Resolved() {
				return nil, ErrAlreadyResolved
			}
			return nil, ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to resolve incident: %w", err)
	}
	return incident, nil
}
