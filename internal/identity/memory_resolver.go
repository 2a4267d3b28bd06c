package identity

import (
	"context"
	"sync"
)

// MemoryResolver is an in-memory Resolver for development and testing.
type MemoryResolver struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewMemoryResolver creates an empty in-memory resolver.
func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{
		accounts: make(map[string]*Account),
	}
}

// Add registers an account under its principal name, replacing any
// previous registration.
func (r *MemoryResolver) Add(account *Account) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[account.Name] = account
}

// Remove deletes an account registration if present.
func (r *MemoryResolver) Remove(principalName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, principalName)
}

// Resolve returns the account registered under principalName, or
// ErrAccountNotFound.
func (r *MemoryResolver) Resolve(ctx context.Context, principalName string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[principalName]
	if !exists {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
