package memory

import (
	"context"
	"fmt"

	"mentor-ai-be/internal/repository/contract"
	"mentor-ai-be/internal/repository/unitofwork"
)

type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

type UnitOfWork struct {
	store *Store
	inTx  bool
	undo  []func()
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.inTx {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	u.inTx = true
	u.undo = nil
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to commit")
	}
	u.undo = nil
	u.inTx = false
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.inTx {
		return fmt.Errorf("no transaction to rollback")
	}
	for i := len(u.undo) - 1; i >= 0; i-- {
		u.undo[i]()
	}
	u.undo = nil
	u.inTx = false
	u.store.mu.Unlock()
	return nil
}

// run executes fn with exclusive access to the store. Inside a transaction
// the lock is already held.
func (u *UnitOfWork) run(fn func() error) error {
	if u.inTx {
		return fn()
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn()
}

// record registers the inverse of a write so Rollback can restore state.
func (u *UnitOfWork) record(revert func()) {
	if u.inTx {
		u.undo = append(u.undo, revert)
	}
}

func (u *UnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &ChatSessionRepository{uow: u}
}

func (u *UnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &ChatMessageRepository{uow: u}
}

func (u *UnitOfWork) QuotaRepository() contract.QuotaRepository {
	return &QuotaRepository{uow: u}
}
