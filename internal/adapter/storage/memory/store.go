// Package memory is an in-process implementation of the account store and
// transaction ledger. It honours the same locking contract as the PostgreSQL
// adapter: one writer per account, bounded lock waits, and staged writes that
// only become visible on commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"
)

// errNoAccount is returned by lock for numbers that were never created.
var errNoAccount = errors.New("memory: no such account")

// Store holds committed state plus one lock slot per existing account.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	transactions map[string][]domain.Transaction
	idempotency  map[string]domain.IdempotencyLog
	locks        map[string]chan struct{}
	lockTimeout  time.Duration
}

// NewStore creates an empty store. Lock waits longer than lockTimeout fail
// with ports.ErrLockTimeout; zero means wait until the context ends.
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string][]domain.Transaction),
		idempotency:  make(map[string]domain.IdempotencyLog),
		locks:        make(map[string]chan struct{}),
		lockTimeout:  lockTimeout,
	}
}

// slot returns the lock of an existing account. Slots are made by AccountRepo.Create
// and accounts are never removed, so the lock map is bounded by the account set.
func (s *Store) slot(accountNumber string) (chan struct{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.locks[accountNumber]
	return ch, ok
}

// lock blocks until the account slot is free, the timeout elapses or ctx ends.
// Unknown accounts fail at once with errNoAccount.
func (s *Store) lock(ctx context.Context, accountNumber string) error {
	ch, ok := s.slot(accountNumber)
	if !ok {
		return errNoAccount
	}

	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		timer := time.NewTimer(s.lockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
		return nil
	case <-timeout:
		return fmt.Errorf("lock account %s: %w", accountNumber, ports.ErrLockTimeout)
	case <-ctx.Done():
		return fmt.Errorf("lock account %s: %w", accountNumber, ctx.Err())
	}
}

func (s *Store) unlock(accountNumber string) {
	if ch, ok := s.slot(accountNumber); ok {
		<-ch
	}
}

func (s *Store) getAccount(accountNumber string) (domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[accountNumber]
	return a, ok
}

func (s *Store) getIdempotency(key string) (domain.IdempotencyLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.idempotency[key]
	return l, ok
}

// commit applies staged writes atomically. A negative balance or an already
// claimed idempotency key aborts the whole batch, mirroring the CHECK and
// primary key constraints of the PostgreSQL schema.
func (s *Store) commit(accounts map[string]domain.Account, txns []domain.Transaction, logs []domain.IdempotencyLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for num, a := range accounts {
		if _, ok := s.accounts[num]; !ok {
			return fmt.Errorf("commit: account %s vanished", num)
		}
		if a.Balance.IsNegative() {
			return fmt.Errorf("commit: account %s balance would be negative", num)
		}
	}
	for _, l := range logs {
		if _, ok := s.idempotency[l.Key]; ok {
			return fmt.Errorf("commit: idempotency key %s: %w", l.Key, ports.ErrDuplicateKey)
		}
	}
	for num, a := range accounts {
		s.accounts[num] = a
	}
	for _, t := range txns {
		s.transactions[t.AccountNumber] = append(s.transactions[t.AccountNumber], t)
	}
	for _, l := range logs {
		s.idempotency[l.Key] = l
	}
	return nil
}
