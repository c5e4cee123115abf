package unitofwork

import "context"

// RepositoryFactory hands out a fresh, short lived UnitOfWork per operation.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
