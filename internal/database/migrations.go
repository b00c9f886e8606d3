package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS companies (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		teams JSONB NOT NULL DEFAULT '[]',
		num_teams INTEGER NOT NULL DEFAULT 0,
		num_managers INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// No foreign key on company_id: trashed accounts keep the id of a company
	// that may since have been deleted.
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		username VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		company_id UUID,
		team_name VARCHAR(255),
		valid_until TIMESTAMP WITH TIME ZONE,
		deleted_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// One active account per username; trashed rows may repeat it.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
		ON users(username) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority VARCHAR(50) NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'pending',
		company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		team_name VARCHAR(255),
		deleted_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS incidents (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		task_id UUID NOT NULL,
		task_title VARCHAR(255) NOT NULL,
		company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
		team_name VARCHAR(255),
		message TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		resolved_at TIMESTAMP WITH TIME ZONE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_company_id ON users(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_valid_until ON users(valid_until)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_company_id ON tasks(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_company_id ON incidents(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_task_id ON incidents(task_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
