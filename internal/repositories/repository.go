package repositories

import "context"

// Repository aggregates all repository interfaces.
type Repository interface {
	// Identity domain
	User() UserRepository

	// School reference data
	School() SchoolRepository
	Schedule() ScheduleRepository

	// Blocking domain
	Blocking() BlockingRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
