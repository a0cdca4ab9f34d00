package testhelpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/compozy/testproject/engine/core"
	"github.com/compozy/testproject/engine/infra"
	"github.com/compozy/testproject/pkg/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jTestInstance holds the connection details of the Neo4j used by tests
type Neo4jTestInstance struct {
	URI      string
	Username string
	Password string
}

var (
	defaultTestUsername = "neo4j"
	defaultTestPassword = "password"
)

// Neo4jFromEnv reads NEO4J_TEST_URI and friends. ok is false when no test
// database is configured.
func Neo4jFromEnv() (instance *Neo4jTestInstance, ok bool) {
	uri := os.Getenv("NEO4J_TEST_URI")
	if uri == "" {
		return nil, false
	}
	return &Neo4jTestInstance{
		URI:      uri,
		Username: getEnvOrDefault("NEO4J_TEST_USERNAME", defaultTestUsername),
		Password: getEnvOrDefault("NEO4J_TEST_PASSWORD", defaultTestPassword),
	}, true
}

// CreateRepository connects a repository to the test instance
func (ti *Neo4jTestInstance) CreateRepository(ctx context.Context) (*infra.Neo4jRepository, error) {
	repo, err := infra.NewNeo4jRepository(ctx, &infra.Neo4jConfig{
		URI:      ti.URI,
		Username: ti.Username,
		Password: ti.Password,
		Retry: &errors.RetryConfig{
			MaxAttempts:     5,
			InitialDelay:    500 * time.Millisecond,
			MaxDelay:        5 * time.Second,
			RetryableErrors: []core.ErrorCode{core.ErrorCodeStoreConnection},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}
	return repo, nil
}

// ClearDatabase removes all nodes and relationships from the database
func (ti *Neo4jTestInstance) ClearDatabase(ctx context.Context) error {
	driver, err := neo4j.NewDriverWithContext(ti.URI, neo4j.BasicAuth(ti.Username, ti.Password, ""))
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	defer driver.Close(ctx)

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode: neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err = session.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
	return err
}

// SetupNeo4jTest skips t unless NEO4J_TEST_URI is set, and otherwise returns
// a connected repository over an emptied database
func SetupNeo4jTest(t *testing.T) *infra.Neo4jRepository {
	t.Helper()

	instance, ok := Neo4jFromEnv()
	if !ok {
		t.Skip("NEO4J_TEST_URI not set, skipping Neo4j integration test")
	}

	ctx := context.Background()
	if err := instance.ClearDatabase(ctx); err != nil {
		t.Fatalf("Failed to clear database: %v", err)
	}
	repo, err := instance.CreateRepository(ctx)
	if err != nil {
		t.Fatalf("Failed to connect to Neo4j: %v", err)
	}
	t.Cleanup(func() {
		if err := instance.ClearDatabase(ctx); err != nil {
			t.Errorf("Failed to clear database after test: %v", err)
		}
		repo.Close(ctx)
	})
	return repo
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
