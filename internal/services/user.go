package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amercier/taskdeck-api/internal/database"
	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrAccessExpired       = errors.New("access expired")
	ErrUsernameTaken       = errors.New("username already exists")
	ErrInvalidRole         = errors.New("invalid role")
	ErrManagerLimitReached = errors.New("manager limit reached for this company")
	ErrTeamLimitReached    = errors.New("team limit reached for this company")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrUnknownTeam         = errors.New("team does not exist in this company")
	ErrCannotDeleteAdmin   = errors.New("cannot delete an admin account")
	ErrNotInTrash          = errors.New("user not found in trash")
	ErrValidUntilRequired  = errors.New("valid_until is required")
)

const userColumns = `id, username, password_hash, role, company_id, team_name, valid_until, deleted_at, created_at`

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

type CreateUserParams struct {
	Username   string
	Password   string
	Role       models.Role
	CompanyID  *uuid.UUID
	TeamName   *string
	ValidUntil *time.Time
}

type UpdateUserParams struct {
	Password        *string
	ValidUntil      *time.Time
	ClearValidUntil bool
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role,
		&u.CompanyID, &u.TeamName, &u.ValidUntil, &u.DeletedAt, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate verifies a username/password pair against the active accounts.
// Expiry is deliberately not checked here: an expired account is trashed on
// its next authenticated request, mirroring the auth-check side effect.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE username = $1 AND deleted_at IS NULL
	`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// CheckActive resolves the subject of an authenticated request and enforces
// account validity. A non-admin past its valid_until is moved to the trash on
// the spot and reported as expired; callers must treat that as a hard stop.
func (s *UserService) CheckActive(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.Trashed() {
		return nil, ErrAccessExpired
	}

	if user.Role != models.RoleAdmin && user.ValidUntil != nil && time.Now().After(*user.ValidUntil) {
		if _, err := s.db.Pool.Exec(ctx, `
			UPDATE users SET deleted_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
		`, user.ID); err != nil {
			return nil, fmt.Errorf("failed to trash expired user: %w", err)
		}
		return nil, ErrAccessExpired
	}

	return user, nil
}

// Create inserts a new account. When the account is attached to a company the
// capacity rules are validated and the insert performed inside one
// transaction, so the count cannot go stale between check and insert.
func (s *UserService) Create(ctx context.Context, p CreateUserParams) (*models.User, error) {
	if !p.Role.Valid() {
		return nil, ErrInvalidRole
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var taken bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND deleted_at IS NULL)
	`, p.Username).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	if p.CompanyID != nil {
		if err := s.validateCompanyCapacity(ctx, tx, p); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role, company_id, team_name, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns+`
	`, p.Username, string(hash), p.Role, p.CompanyID, p.TeamName, p.ValidUntil))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

func (s *UserService) validateCompanyCapacity(ctx context.Context, tx pgx.Tx, p CreateUserParams) error {
	var company models.Company
	err := tx.QueryRow(ctx, `
		SELECT id, name, teams, num_teams, num_managers FROM companies WHERE id = $1
	`, p.CompanyID).Scan(&company.ID, &company.Name, &company.Teams, &company.NumTeams, &company.NumManagers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCompanyNotFound
		}
		return fmt.Errorf("failed to load company: %w", err)
	}

	switch p.Role {
	case models.RoleAdmin:
		// admins are not bound to company capacity

	case models.RoleManager:
		var count int
		err := tx.QueryRow(ctx, `
			SELECT COUNT(*) FROM users
			WHERE company_id = $1 AND role = $2 AND deleted_at IS NULL
		`, p.CompanyID, models.RoleManager).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to count managers: %w", err)
		}
		if count >= company.NumManagers {
			return ErrManagerLimitReached
		}

	case models.RoleTeam:
		if p.TeamName == nil || *p.TeamName == "" {
			return ErrTeamNameRequired
		}
		if !company.HasTeam(*p.TeamName) {
			return ErrUnknownTeam
		}

		var distinctTeams int
		err := tx.QueryRow(ctx, `
			SELECT COUNT(DISTINCT team_name) FROM users
			WHERE company_id = $1 AND role = $2 AND deleted_at IS NULL
		`, p.CompanyID, models.RoleTeam).Scan(&distinctTeams)
		if err != nil {
			return fmt.Errorf("failed to count teams: %w", err)
		}

		var teamExists bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM users
				WHERE company_id = $1 AND team_name = $2 AND role = $3 AND deleted_at IS NULL
			)
		`, p.CompanyID, *p.TeamName, models.RoleTeam).Scan(&teamExists)
		if err != nil {
			return fmt.Errorf("failed to check team: %w", err)
		}

		if !teamExists && distinctTeams >= company.NumTeams {
			return ErrTeamLimitReached
		}
	}

	return nil
}

// List returns every active account.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE deleted_at IS NULL
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]models.User, error) {
	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.PasswordHash, &u.Role,
			&u.CompanyID, &u.TeamName, &u.ValidUntil, &u.DeletedAt, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update changes an account's password and/or validity window.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, p UpdateUserParams) error {
	set := ""
	args := []any{}

	if p.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		args = append(args, string(hash))
		set = fmt.Sprintf("password_hash = $%d", len(args))
	}
	if p.ValidUntil != nil || p.ClearValidUntil {
		var validUntil *time.Time
		if !p.ClearValidUntil {
			validUntil = p.ValidUntil
		}
		args = append(args, validUntil)
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("valid_until = $%d", len(args))
	}
	if set == "" {
		return nil
	}

	args = append(args, id)
	tag, err := s.db.Pool.Exec(ctx, fmt.Sprintf(`
		UPDATE users SET %s WHERE id = $%d AND deleted_at IS NULL
	`, set, len(args)), args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete moves an active account to the trash. Admin accounts are protected.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE id = $1 AND deleted_at IS NULL
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user.Role == models.RoleAdmin {
		return ErrCannotDeleteAdmin
	}

	_, err = s.db.Pool.Exec(ctx, `
		UPDATE users SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to trash user: %w", err)
	}
	return nil
}

// ListTrash returns every trashed account.
func (s *UserService) ListTrash(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// Restore brings a trashed account back with a fresh validity window. The new
// valid_until is mandatory; restoring without one is rejected.
func (s *UserService) Restore(ctx context.Context, id uuid.UUID, validUntil *time.Time) error {
	if validUntil == nil {
		return ErrValidUntilRequired
	}

	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE users SET deleted_at = NULL, valid_until = $2
		WHERE id = $1 AND deleted_at IS NOT NULL
	`, id, validUntil)
	if err != nil {
		return fmt.Errorf("failed to restore user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotInTrash
	}
	return nil
}

// Purge permanently removes a trashed account. Purge is terminal.
func (s *UserService) Purge(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx, `
		DELETE FROM users WHERE id = $1 AND deleted_at IS NOT NULL
	`, id)
	if err != nil {
		return fmt.Errorf("failed to purge user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotInTrash
	}
	return nil
}

// SweepExpired trashes every non-admin account past its valid_until and
// returns the accounts that were moved.
func (s *UserService) SweepExpired(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Pool.Query(ctx, `
		UPDATE users SET deleted_at = NOW()
		WHERE valid_until < NOW() AND role <> $1 AND deleted_at IS NULL
		RETURNING `+userColumns+`
	`, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep expired users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// EnsureAdmin creates the bootstrap admin account, or resets its password and
// role if it already exists. Run once at startup.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	var id uuid.UUID
	err = s.db.Pool.QueryRow(ctx, `
		SELECT id FROM users WHERE username = $1 AND deleted_at IS NULL
	`, username).Scan(&id)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		_, err = s.db.Pool.Exec(ctx, `
			INSERT INTO users (username, password_hash, role)
			VALUES ($1, $2, $3)
		`, username, string(hash), models.RoleAdmin)
	case err == nil:
		_, err = s.db.Pool.Exec(ctx, `
			UPDATE users
			SET password_hash = $2, role = $3, company_id = NULL, team_name = NULL, valid_until = NULL
			WHERE id = $1
		`, id, string(hash), models.RoleAdmin)
	}
	if err != nil {
		return fmt.Errorf("failed to ensure admin account: %w", err)
	}
	return nil
}
