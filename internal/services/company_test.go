package services

import (
	"context"
	"testing"
	"time"

	"github.com/amercier/taskdeck-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var companyRowColumns = []string{"id", "name", "teams", "num_teams", "num_managers", "created_at"}

func setupCompanyService(t *testing.T) (*CompanyService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewCompanyService(db), mock
}

func TestCompanyService_Create(t *testing.T) {
	svc, mock := setupCompanyService(t)
	ctx := context.Background()
	companyID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows(companyRowColumns).
		AddRow(companyID, "Acme", []string{"backend", "frontend"}, 2, 1, now)

	mock.ExpectQuery(`INSERT INTO companies`).
		WithArgs("Acme", `["backend","frontend"]`, 2, 1).
		WillReturnRows(rows)

	company, err := svc.Create(ctx, CompanyParams{
		Name:        "Acme",
		Teams:       []string{"backend", "frontend"},
		NumTeams:    2,
		NumManagers: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, companyID, company.ID)
	assert.Equal(t, []string{"backend", "frontend"}, company.Teams)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_Create_NilTeams(t *testing.T) {
	svc, mock := setupCompanyService(t)
	ctx := context.Background()
	companyID := uuid.New()

	rows := pgxmock.NewRows(companyRowColumns).
		AddRow(companyID, "Solo", []string{}, 0, 1, time.Now())

	mock.ExpectQuery(`INSERT INTO companies`).
		WithArgs("Solo", `[]`, 0, 1).
		WillReturnRows(rows)

	company, err := svc.Create(ctx, CompanyParams{Name: "Solo", NumManagers: 1})

	require.NoError(t, err)
	assert.Empty(t, company.Teams)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupCompanyService(t)
	ctx := context.Background()
	companyID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM companies WHERE id`).
		WithArgs(companyID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(ctx, companyID)

	assert.ErrorIs(t, err, ErrCompanyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_Update(t *testing.T) {
	svc, mock := setupCompanyService(t)
	ctx := context.Background()
	companyID := uuid.New()

	rows := pgxmock.NewRows(companyRowColumns).
		AddRow(companyID, "Acme Corp", []string{"backend"}, 1, 3, time.Now())

	mock.ExpectQuery(`UPDATE companies`).
		WithArgs(companyID, "Acme Corp", `["backend"]`, 1, 3).
		WillReturnRows(rows)

	company, err := svc.Update(ctx, companyID, CompanyParams{
		Name:        "Acme Corp",
		Teams:       []string{"backend"},
		NumTeams:    1,
		NumManagers: 3,
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", company.Name)
	assert.Equal(t, 3, company.NumManagers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_Update_NotFound(t *testing.T) {
	svc, mock := setupCompanyService(t)
	ctx := context.Background()
	companyID := uuid.New()

	mock.ExpectQuery(`UPDATE companies`).
		WithArgs(companyID, "Ghost", `[]`, 0, 0).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Update(ctx, companyID, CompanyParams{Name: "Ghost"})

	assert.ErrorIs(t, err, ErrCompanyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_Delete(t *testing.T) {
	svc, mock := setupCompanyService(t)
	ctx := context.Background()
	companyID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET deleted_at = NOW\(\)`).
		WithArgs(companyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	mock.ExpectExec(`DELETE FROM incidents WHERE company_id`).
		WithArgs(companyID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM tasks WHERE company_id`).
		WithArgs(companyID).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectExec(`DELETE FROM companies WHERE id`).
		WithArgs(companyID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := svc.Delete(ctx, companyID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_Delete_NotFound(t *testing.T) {
	svc, mock := setupCompanyService(t)
	ctx := context.Background()
	companyID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET deleted_at = NOW\(\)`).
		WithArgs(companyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM incidents WHERE company_id`).
		WithArgs(companyID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM tasks WHERE company_id`).
		WithArgs(companyID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM companies WHERE id`).
		WithArgs(companyID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := svc.Delete(ctx, companyID)

	assert.ErrorIs(t, err, ErrCompanyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_FirstCompany_Empty(t *testing.T) {
	svc, mock := setupCompanyService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT .+ FROM companies ORDER BY created_at LIMIT 1`).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.FirstCompany(ctx)

	assert.ErrorIs(t, err, ErrCompanyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyService_List(t *testing.T) {
	svc, mock := setupCompanyService(t)
	ctx := context.Background()
	now := time.Now()

	rows := pgxmock.NewRows(companyRowColumns).
		AddRow(uuid.New(), "Acme", []string{"backend"}, 1, 1, now).
		AddRow(uuid.New(), "Globex", []string{}, 0, 2, now)

	mock.ExpectQuery(`SELECT .+ FROM companies ORDER BY created_at`).
		WillReturnRows(rows)

	companies, err := svc.List(ctx)

	require.NoError(t, err)
	assert.Len(t, companies, 2)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
