package db

import (
	"fmt"
	"strings"

	"github.com/vvka-141/transient/pkg/transient"
)

// wrapConnectionError wraps the final connection error with actionable guidance.
// The result matches both transient.ErrConnectionFailed and err.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`%w: connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, transient.ErrConnectionFailed, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`%w: cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, transient.ErrConnectionFailed, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`%w: password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username
  - User does not have access to the database

Original error: %w`, transient.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`%w: database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, transient.ErrConnectionFailed, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`%w: connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, transient.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`%w: SSL/TLS connection error

Possible causes:
  - Server requires SSL but sslmode in the connection string is wrong
  - Certificate verification failed (try sslmode=require)
  - Client certificates missing (check sslcert, sslkey)

Original error: %w`, transient.ErrConnectionFailed, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`%w: too many connections to database "%s"

Possible causes:
  - Connection pool exhausted on server
  - max_connections limit reached in postgresql.conf
  - Stale connections from earlier clients

Try: SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s';

Original error: %w`, transient.ErrConnectionFailed, database, database, err)

	default:
		return fmt.Errorf("%w: failed to connect to database: %w", transient.ErrConnectionFailed, err)
	}
}
