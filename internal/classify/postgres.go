package classify

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes for transient conditions outside the transient classes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 40 - Transaction Rollback
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"

	// Class 55 - Object Not In Prerequisite State
	pgCodeLockNotAvailable = "55P03"
)

// Whole SQLSTATE classes that are transient:
// 08 connection exception, 53 insufficient resources, 57 operator intervention.
var pgTransientClasses = []string{"08", "53", "57"}

// connectionErrorPatterns are lowercase fragments of pgx connection failures
// that carry no SQLSTATE.
var connectionErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"connection pool exhausted",
}

// Postgres classifies errors reported by pgx.
type Postgres struct {
	network *Network
}

// NewPostgres creates a new PostgreSQL error classifier.
func NewPostgres() *Postgres {
	return &Postgres{network: NewNetwork()}
}

// IsTransient determines if an error is temporary and retryable.
func (c *Postgres) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return IsTransientSQLState(pgErr.Code)
	}

	// pgx knows when nothing reached the server
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	if c.network.IsTransient(err) {
		return true
	}

	return containsAny(err.Error(), connectionErrorPatterns)
}

// IsTransientSQLState reports whether a SQLSTATE code denotes a transient condition.
func IsTransientSQLState(code string) bool {
	for _, class := range pgTransientClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}

	switch code {
	case pgCodeSerializationFailure,
		pgCodeDeadlockDetected,
		pgCodeLockNotAvailable:
		return true
	}
	return false
}

func containsAny(msg string, patterns []string) bool {
	msg = strings.ToLower(msg)
	for _, pattern := range patterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
