package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/pkg/apperror"

	"github.com/rs/zerolog"
)

// CryptoRandom implements ports.RandomSource on crypto/rand.
type CryptoRandom struct{}

// Intn returns a uniform integer in [0, n).
func (CryptoRandom) Intn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}

// AccountNumberGeneratorImpl implements ports.AccountNumberGenerator.
// Candidates are prefix followed by digits random decimal digits.
type AccountNumberGeneratorImpl struct {
	accounts    ports.AccountRepository
	random      ports.RandomSource
	prefix      string
	digits      int
	space       int
	maxAttempts int
	log         zerolog.Logger
}

// NewAccountNumberGenerator creates a generator drawing from random.
func NewAccountNumberGenerator(
	accounts ports.AccountRepository,
	random ports.RandomSource,
	prefix string,
	digits int,
	maxAttempts int,
	log zerolog.Logger,
) *AccountNumberGeneratorImpl {
	space := 1
	for i := 0; i < digits; i++ {
		space *= 10
	}
	return &AccountNumberGeneratorImpl{
		accounts:    accounts,
		random:      random,
		prefix:      prefix,
		digits:      digits,
		space:       space,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

func (g *AccountNumberGeneratorImpl) candidate() (string, error) {
	n, err := g.random.Intn(g.space)
	if err != nil {
		return "", err
	}
	if n < 0 || n >= g.space {
		return "", fmt.Errorf("random source returned %d outside [0, %d)", n, g.space)
	}
	return fmt.Sprintf("%s%0*d", g.prefix, g.digits, n), nil
}

// Generate returns a candidate that was unused at the time of the check.
// Uniqueness is only final once the insert succeeds; see Reserve.
func (g *AccountNumberGeneratorImpl) Generate(ctx context.Context) (string, error) {
	return g.Reserve(ctx, nil)
}

// Reserve draws candidates until insert stores one. Both a positive Exists
// check and a ports.ErrDuplicateKey from insert count as a collision and
// consume an attempt from the same budget.
func (g *AccountNumberGeneratorImpl) Reserve(ctx context.Context, insert func(ctx context.Context, accountNumber string) error) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		number, err := g.candidate()
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("draw account number: %w", err))
		}

		taken, err := g.accounts.Exists(ctx, number)
		if err != nil {
			return "", storeError("check account number", err)
		}
		if taken {
			g.log.Debug().Int("attempt", attempt).Str("account_number", number).Msg("account number collision")
			continue
		}

		if insert == nil {
			return number, nil
		}

		err = insert(ctx, number)
		if err == nil {
			return number, nil
		}
		if errors.Is(err, ports.ErrDuplicateKey) {
			g.log.Debug().Int("attempt", attempt).Str("account_number", number).Msg("account number taken on insert")
			continue
		}
		return "", storeError("insert account", err)
	}

	g.log.Warn().Int("max_attempts", g.maxAttempts).Msg("account number keyspace exhausted")
	return "", apperror.ErrExhaustedKeyspace(g.maxAttempts)
}
