package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/platform/logger"
	"github.com/taskwire/taskwire/internal/store"
)

// PostgresProjectStore implements the store.ProjectStore interface using
// PostgreSQL. It is read-only: project writes belong to the project service,
// this store only feeds recipient resolution.
type PostgresProjectStore struct {
	db store.DBTX
}

// Verify PostgresProjectStore implements store.ProjectStore
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// NewPostgresProjectStore creates a new PostgresProjectStore
func NewPostgresProjectStore(db store.DBTX) *PostgresProjectStore {
	return &PostgresProjectStore{
		db: db,
	}
}

// GetByID retrieves a project together with its member list.
// Returns store.ErrProjectNotFound if the project does not exist.
func (s *PostgresProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, name, creator_id, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project domain.Project
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&project.CreatorID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProjectNotFound
		}
		log.Error("failed to get project",
			"project_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get project: %w", MapError(err))
	}

	members, err := s.listMembers(ctx, id)
	if err != nil {
		log.Error("failed to list project members",
			"project_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	project.Members = members

	return &project, nil
}

// listMembers returns the user ids recorded in project_members for a project.
func (s *PostgresProjectStore) listMembers(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM project_members
		WHERE project_id = $1
		ORDER BY added_at
	`

	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var members []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		members = append(members, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return members, nil
}
