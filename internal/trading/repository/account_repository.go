package repository

import (
	"context"
	"sync"

	"golang-futures-bot/internal/entity"
)

// AccountRepository is the in-memory store of per-user accounts. All
// mutations go through Update, which serializes read-modify-write per
// account so balances and position lists stay consistent under concurrent
// chat and sweep activity.
type AccountRepository interface {
	Update(ctx context.Context, chatID int64, fn func(*entity.Account) error) error
	View(ctx context.Context, chatID int64, fn func(*entity.Account)) error
	ChatIDs(ctx context.Context) []int64
}

type memoryAccountRepository struct {
	mu             sync.Mutex
	accounts       map[int64]*entity.Account
	locks          map[int64]*sync.Mutex
	initialBalance float64
}

// NewMemoryAccountRepository creates the in-memory account store. Accounts
// are created on first access and live for the process lifetime.
func NewMemoryAccountRepository(initialBalance float64) AccountRepository {
	return &memoryAccountRepository{
		accounts:       make(map[int64]*entity.Account),
		locks:          make(map[int64]*sync.Mutex),
		initialBalance: initialBalance,
	}
}

func (r *memoryAccountRepository) get(chatID int64) (*entity.Account, *sync.Mutex) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[chatID]
	if !ok {
		acc = entity.NewAccount(chatID, r.initialBalance)
		r.accounts[chatID] = acc
		r.locks[chatID] = &sync.Mutex{}
	}
	return acc, r.locks[chatID]
}

func (r *memoryAccountRepository) Update(_ context.Context, chatID int64, fn func(*entity.Account) error) error {
	acc, lock := r.get(chatID)
	lock.Lock()
	defer lock.Unlock()
	return fn(acc)
}

func (r *memoryAccountRepository) View(_ context.Context, chatID int64, fn func(*entity.Account)) error {
	acc, lock := r.get(chatID)
	lock.Lock()
	defer lock.Unlock()
	fn(acc)
	return nil
}

func (r *memoryAccountRepository) ChatIDs(_ context.Context) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	return ids
}
