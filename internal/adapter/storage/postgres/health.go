package postgres

import (
	"context"
	"errors"
	"fmt"
)

// errSchemaMissing reports a reachable database whose migrations have not run.
var errSchemaMissing = errors.New("accounts and transactions tables are missing")

// HealthCheck implements ports.HealthChecker for PostgreSQL. A database
// is healthy once it answers and the banking schema is in place.
type HealthCheck struct {
	pool Pool
}

// NewHealthCheck creates a PostgreSQL health checker.
func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping checks connectivity and schema presence.
func (h *HealthCheck) Ping(ctx context.Context) error {
	var ready bool
	err := h.pool.QueryRow(ctx,
		`SELECT to_regclass('accounts') IS NOT NULL AND to_regclass('transactions') IS NOT NULL`,
	).Scan(&ready)
	if err != nil {
		return fmt.Errorf("postgres health: %w", err)
	}
	if !ready {
		return errSchemaMissing
	}
	return nil
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "postgresql"
}
