package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amercier/taskdeck-api/internal/database"
	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrCompanyNotFound = errors.New("company not found")

const companyColumns = `id, name, teams, num_teams, num_managers, created_at`

type CompanyService struct {
	db *database.DB
}

func NewCompanyService(db *database.DB) *CompanyService {
	return &CompanyService{db: db}
}

type CompanyParams struct {
	Name        string
	Teams       []string
	NumTeams    int
	NumManagers int
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.Name, &c.Teams, &c.NumTeams, &c.NumManagers, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func teamsJSON(teams []string) (string, error) {
	if teams == nil {
		teams = []string{}
	}
	b, err := json.Marshal(teams)
	if err != nil {
		return "", fmt.Errorf("failed to encode teams: %w", err)
	}
	return string(b), nil
}

func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+companyColumns+`
		FROM companies ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Teams, &c.NumTeams, &c.NumManagers, &c.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *CompanyService) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := scanCompany(s.db.Pool.QueryRow(ctx, `
		SELECT `+companyColumns+`
		FROM companies WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// FirstCompany returns the oldest company, used as the admin's default view.
func (s *CompanyService) FirstCompany(ctx context.Context) (*models.Company, error) {
	company, err := scanCompany(s.db.Pool.QueryRow(ctx, `
		SELECT ` + companyColumns + `
		FROM companies ORDER BY created_at LIMIT 1
	`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) Create(ctx context.Context, p CompanyParams) (*models.Company, error) {
	teams, err := teamsJSON(p.Teams)
	if err != nil {
		return nil, err
	}

	company, err := scanCompany(s.db.Pool.QueryRow(ctx, `
		INSERT INTO companies (name, teams, num_teams, num_managers)
		VALUES ($1, $2::jsonb, $3, $4)
		RETURNING `+companyColumns+`
	`, p.Name, teams, p.NumTeams, p.NumManagers))
	if err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, p CompanyParams) (*models.Company, error) {
	teams, err := teamsJSON(p.Teams)
	if err != nil {
		return nil, err
	}

	company, err := scanCompany(s.db.Pool.QueryRow(ctx, `
		UPDATE companies
		SET name = $2, teams = $3::jsonb, num_teams = $4, num_managers = $5
		WHERE id = $1
		RETURNING `+companyColumns+`
	`, id, p.Name, teams, p.NumTeams, p.NumManagers))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return company, nil
}

// Delete removes a company and everything scoped to it, in one transaction:
// member accounts go to the trash, tasks and incidents are removed for good.
func (s *CompanyService) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE users SET deleted_at = NOW()
		WHERE company_id = $1 AND deleted_at IS NULL
	`, id); err != nil {
		return fmt.Errorf("failed to trash company users: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM incidents WHERE company_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete company incidents: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE company_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete company tasks: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
