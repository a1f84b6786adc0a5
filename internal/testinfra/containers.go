// Package testinfra starts disposable backends for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "postgres"

	NATSImage = "nats:2.11.7-alpine"
)

type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartPostgres runs a PostgreSQL container and waits until it accepts connections.
func StartPostgres(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

// RequirePostgres starts a container for t, or skips t under -short or when
// no container runtime is reachable. The container is terminated on cleanup.
func RequirePostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := StartPostgres(ctx)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr.PostgresContainer); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})
	return ctr
}

// StartNATS runs a NATS server container and returns it with its client URL.
func StartNATS(ctx context.Context) (testcontainers.Container, string, error) {
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        NATSImage,
			ExposedPorts: []string{"4222/tcp"},
			WaitingFor:   wait.ForListeningPort("4222/tcp"),
		},
		Started: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("start nats: %w", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get nats host: %w", err)
	}
	port, err := ctr.MappedPort(ctx, "4222")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, "", fmt.Errorf("get nats port: %w", err)
	}
	return ctr, fmt.Sprintf("nats://%s:%s", host, port.Port()), nil
}

// RequireNATS is like RequirePostgres for a NATS server and returns its URL.
func RequireNATS(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, url, err := StartNATS(ctx)
	if err != nil {
		t.Fatalf("start nats: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate nats: %v", err)
		}
	})
	return url
}
