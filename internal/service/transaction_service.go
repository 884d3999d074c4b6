package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eagle-bank-api/internal/core/domain"
	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/pkg/apperror"

	"github.com/rs/zerolog"
)

// idempotencyLockTTL bounds how long a crashed request can block its key.
const idempotencyLockTTL = 30 * time.Second

// TransactionServiceImpl implements ports.TransactionService.
type TransactionServiceImpl struct {
	guard      ports.OwnershipGuard
	engine     ports.BalanceEngine
	txRepo     ports.TransactionRepository
	idempRepo  ports.IdempotencyRepository
	idempCache ports.IdempotencyCache  // optional
	idempLock  ports.IdempotencyLocker // optional
	idempTTL   time.Duration
	log        zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl. idempCache and
// idempLock may be nil; keyed requests are then deduplicated by idempRepo alone.
func NewTransactionService(
	guard ports.OwnershipGuard,
	engine ports.BalanceEngine,
	txRepo ports.TransactionRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	idempLock ports.IdempotencyLocker,
	idempTTL time.Duration,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		guard:      guard,
		engine:     engine,
		txRepo:     txRepo,
		idempRepo:  idempRepo,
		idempCache: idempCache,
		idempLock:  idempLock,
		idempTTL:   idempTTL,
		log:        log,
	}
}

// CreateTransaction authorizes the user and hands the mutation to the engine.
// With an idempotency key, a replay of the same request returns the originally
// recorded transaction and a reuse with a different request is rejected.
func (s *TransactionServiceImpl) CreateTransaction(ctx context.Context, req ports.CreateTransactionRequest) (*domain.Transaction, error) {
	account, err := s.guard.Authorize(ctx, req.UserID, req.AccountNumber)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey == "" {
		return s.engine.Apply(ctx, req.MutationRequest)
	}

	mreq := req.MutationRequest
	if mreq.Currency == "" {
		mreq.Currency = account.Currency
	}
	claim := &domain.IdempotencyLog{
		Key:         domain.BuildIdempotencyKey(req.UserID, req.AccountNumber, req.IdempotencyKey),
		Fingerprint: domain.RequestFingerprint(mreq.Type, mreq.Amount, mreq.Currency, mreq.Reference),
	}

	// Layer 1 (Redis) then layer 2 (durable log).
	if txn, err := s.replay(ctx, claim); txn != nil || err != nil {
		return txn, err
	}

	if s.idempLock != nil {
		release, err := s.idempLock.Acquire(ctx, claim.Key, idempotencyLockTTL)
		switch {
		case errors.Is(err, ports.ErrLockHeld):
			return nil, apperror.ErrIdempotencyConflict()
		case err != nil:
			s.log.Warn().Err(err).Str("key", claim.Key).Msg("idempotency lock unavailable, proceeding without it")
		default:
			defer release()
			// The holder we waited on may have finished in the meantime.
			if txn, err := s.replay(ctx, claim); txn != nil || err != nil {
				return txn, err
			}
		}
	}

	mreq.Idempotency = claim
	txn, err := s.engine.Apply(ctx, mreq)
	if errors.Is(err, ports.ErrDuplicateKey) {
		// A concurrent request claimed the key first and has committed.
		if txn, err := s.replay(ctx, claim); txn != nil || err != nil {
			return txn, err
		}
		return nil, apperror.ErrIdempotencyConflict()
	}
	if err != nil {
		return nil, err
	}

	s.remember(ctx, claim.Key, &domain.IdempotencyEntry{Fingerprint: claim.Fingerprint, Transaction: txn})
	return txn, nil
}

// replay returns the transaction already recorded for claim.Key, nil when the
// key is unused, or ErrIdempotencyKeyMismatch when it was used for another request.
func (s *TransactionServiceImpl) replay(ctx context.Context, claim *domain.IdempotencyLog) (*domain.Transaction, error) {
	entry := s.cachedEntry(ctx, claim.Key)
	if entry == nil {
		log, err := s.idempRepo.Get(ctx, claim.Key)
		if err != nil {
			return nil, storeError("idempotency lookup", err)
		}
		if log == nil {
			return nil, nil
		}
		txn, err := s.txRepo.GetByID(ctx, log.TransactionID, log.AccountNumber)
		if err != nil {
			return nil, storeError("load idempotent transaction", err)
		}
		if txn == nil {
			return nil, apperror.InternalError(
				fmt.Errorf("idempotency key %s points at missing transaction %s", claim.Key, log.TransactionID))
		}
		entry = &domain.IdempotencyEntry{Fingerprint: log.Fingerprint, Transaction: txn}
		s.remember(ctx, claim.Key, entry)
	}

	if entry.Fingerprint != claim.Fingerprint {
		s.log.Warn().Str("key", claim.Key).Str("tx_id", entry.Transaction.ID).Msg("idempotency key reused with a different request")
		return nil, apperror.ErrIdempotencyKeyMismatch()
	}
	return entry.Transaction, nil
}

func (s *TransactionServiceImpl) cachedEntry(ctx context.Context, key string) *domain.IdempotencyEntry {
	if s.idempCache == nil {
		return nil
	}
	entry, err := s.idempCache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, falling through to DB")
		return nil
	}
	return entry
}

func (s *TransactionServiceImpl) remember(ctx context.Context, key string, entry *domain.IdempotencyEntry) {
	if s.idempCache == nil {
		return
	}
	if err := s.idempCache.Set(ctx, key, entry, s.idempTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotency in redis")
	}
}

// ListTransactions returns the account history in creation order.
func (s *TransactionServiceImpl) ListTransactions(ctx context.Context, accountNumber, userID string) ([]domain.Transaction, error) {
	if _, err := s.guard.Authorize(ctx, userID, accountNumber); err != nil {
		return nil, err
	}

	txns, err := s.txRepo.ListByAccount(ctx, accountNumber)
	if err != nil {
		return nil, storeError("list transactions", err)
	}
	return txns, nil
}

// GetTransaction returns one transaction of the account.
func (s *TransactionServiceImpl) GetTransaction(ctx context.Context, accountNumber, transactionID, userID string) (*domain.Transaction, error) {
	if _, err := s.guard.Authorize(ctx, userID, accountNumber); err != nil {
		return nil, err
	}

	txn, err := s.txRepo.GetByID(ctx, transactionID, accountNumber)
	if err != nil {
		return nil, storeError("get transaction", err)
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound()
	}
	return txn, nil
}
