package unitofwork

import (
	"context"

	"voice-assistant-be/internal/repository/contract"
)

// RepositoryFactory hands each request its own unit of work.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// UnitOfWork groups repository calls. Without Begin every call runs on the pool.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	EventRepository() contract.EventRepository
}
