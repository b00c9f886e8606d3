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

var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, title, description, priority, status, company_id, team_name, deleted_at, created_at, updated_at`

type TaskService struct {
	db *database.DB
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

type CreateTaskParams struct {
	Title       string
	Description string
	Priority    string
	CompanyID   uuid.UUID
	TeamName    *string
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.CompanyID, &t.TeamName, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTasks(rows pgx.Rows) ([]models.Task, error) {
	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
			&t.CompanyID, &t.TeamName, &t.DeletedAt, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// scopeFilter appends the role-based visibility clause. The switch is
// exhaustive over the closed role set.
func scopeFilter(scope models.Scope, query string, args []any) (string, []any) {
	switch scope.Role {
	case models.RoleAdmin:
		// admins see everything
	case models.RoleManager:
		args = append(args, scope.CompanyID)
		query += fmt.Sprintf(" AND company_id = $%d", len(args))
	case models.RoleTeam:
		args = append(args, scope.CompanyID)
		query += fmt.Sprintf(" AND company_id = $%d", len(args))
		args = append(args, scope.TeamName)
		query += fmt.Sprintf(" AND team_name = $%d", len(args))
	}
	return query, args
}

// ListForScope returns the live tasks visible to the given scope.
func (s *TaskService) ListForScope(ctx context.Context, scope models.Scope) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE deleted_at IS NULL`
	query, args := scopeFilter(scope, query, nil)
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

// History returns the same set ordered by last update, newest first.
func (s *TaskService) History(ctx context.Context, scope models.Scope) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE deleted_at IS NULL`
	query, args := scopeFilter(scope, query, nil)
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTasks(rows)
}

func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := scanTask(s.db.Pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, p CreateTaskParams) (*models.Task, error) {
	task, err := scanTask(s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, priority, status, company_id, team_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns+`
	`, p.Title, p.Description, p.Priority, models.StatusPending, p.CompanyID, p.TeamName))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// UpdateStatus writes the new status and, when the status is the incident
// state and a note was given, inserts the linked incident in the same
// transaction. reporterTeam is the team of the user reporting, which may
// differ from the task's own team.
func (s *TaskService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TaskStatus, note string, reporterTeam *string) (*models.Task, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	task, err := scanTask(tx.QueryRow(ctx, `
		UPDATE tasks SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+taskColumns+`
	`, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	if status == models.StatusIncident && note != "" {
		_, err = tx.Exec(ctx, `
			INSERT INTO incidents (task_id, task_title, company_id, team_name, message)
			VALUES ($1, $2, $3, $4, $5)
		`, task.ID, task.Title, task.CompanyID, reporterTeam, note)
		if err != nil {
			return nil, fmt.Errorf("failed to create incident: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return task, nil
}

// Delete soft-deletes a task. Its incidents are kept; they carry the task
// title and survive on their own.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE tasks SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
