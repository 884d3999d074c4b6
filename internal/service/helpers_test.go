package service

import (
	"context"
	"sync"
	"testing"

	"eagle-bank-api/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTx implements pgx.Tx for testing and records how the unit of work ended.
type mockTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (m *mockTx) Commit(_ context.Context) error {
	m.committed = true
	return m.commitErr
}

func (m *mockTx) Rollback(_ context.Context) error {
	if m.committed && m.commitErr == nil {
		return pgx.ErrTxClosed
	}
	m.rolledBack = true
	return nil
}

// sequenceRandom replays fixed draws, then repeats the last one.
type sequenceRandom struct {
	mu    sync.Mutex
	draws []int
	next  int
}

func (r *sequenceRandom) Intn(n int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.draws[r.next]
	if r.next < len(r.draws)-1 {
		r.next++
	}
	return v % n, nil
}

func assertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, expectedCode, appErr.Code)
}

func strPtr(s string) *string { return &s }
