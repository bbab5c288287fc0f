package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/fr-yash/CoBuilderr/internal/models"
)

// DataStore defines the interface for persistent storage of users and
// projects. Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, exclude uuid.UUID) ([]models.User, error)

	// Project operations
	CreateProject(ctx context.Context, name string, owner uuid.UUID) (*models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListProjectsForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	AddProjectMembers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) (*models.Project, error)
	IsProjectMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
}
