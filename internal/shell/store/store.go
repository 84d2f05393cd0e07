package store

import (
	"context"

	"github.com/marofny/deckhand/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for Deckhand entities.
type Store interface {
	// Secret operations
	CreateSecret(ctx context.Context, key, value string) error
	UpdateSecret(ctx context.Context, key, value string) error
	DeleteSecret(ctx context.Context, key string) error
	GetSecret(ctx context.Context, key string) (*domain.Secret, error)
	ListSecrets(ctx context.Context) ([]domain.Secret, error)

	// User operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByName(ctx context.Context, name string) (*domain.User, error)
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Deploy snapshot operations. ListSnapshots returns snapshots across all
	// projects ordered newest first, which is the shape the planner consumes.
	SaveSnapshot(ctx context.Context, projectName string, payload []byte) error
	ListSnapshots(ctx context.Context) ([]domain.Snapshot, error)

	// Lifecycle
	Close() error
}
