package infra

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/core"
	"github.com/compozy/testproject/pkg/errors"
	"github.com/compozy/testproject/pkg/logger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
)

// Neo4jConfig holds Neo4j connection configuration
type Neo4jConfig struct {
	URI      string // Neo4j connection URI
	Username string // Username for authentication
	Password string // Password for authentication
	Database string // Database name (optional)
	Retry    *errors.RetryConfig
}

// Global mutex to prevent concurrent constraint creation across all repository instances
var constraintMutex sync.Mutex

// Neo4jRepository stores parsed CMake indexes as a graph
type Neo4jRepository struct {
	driver neo4j.DriverWithContext
	config *Neo4jConfig
}

// StoredFile summarizes what is stored for one CMake file
type StoredFile struct {
	Path      string
	Callables int
	Keywords  int
	Calls     int
}

// NewNeo4jRepository connects to Neo4j, retrying connection failures
func NewNeo4jRepository(ctx context.Context, cfg *Neo4jConfig) (*Neo4jRepository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("neo4j config is required")
	}
	r := &Neo4jRepository{config: cfg}
	if err := r.connect(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Neo4jRepository) connect(ctx context.Context) error {
	logger.Info("connecting to Neo4j", "uri", r.config.URI)

	retryConfig := r.config.Retry
	if retryConfig == nil {
		retryConfig = &errors.RetryConfig{
			MaxAttempts:     3,
			InitialDelay:    2 * time.Second,
			MaxDelay:        10 * time.Second,
			RetryableErrors: []core.ErrorCode{core.ErrorCodeStoreConnection},
		}
	}

	err := errors.WithRetry(ctx, "neo4j_connect", retryConfig, func() error {
		driver, err := neo4j.NewDriverWithContext(
			r.config.URI,
			neo4j.BasicAuth(r.config.Username, r.config.Password, ""),
			func(c *config.Config) {
				c.MaxConnectionPoolSize = 10
				c.MaxConnectionLifetime = 5 * time.Minute
				c.ConnectionAcquisitionTimeout = 30 * time.Second
			},
		)
		if err != nil {
			return core.NewError(err, core.ErrorCodeStoreConnection, map[string]any{
				"uri": r.config.URI,
			})
		}

		if err := driver.VerifyConnectivity(ctx); err != nil {
			driver.Close(ctx)
			return core.NewError(err, core.ErrorCodeStoreConnection, map[string]any{
				"uri":   r.config.URI,
				"error": "connectivity verification failed",
			})
		}

		r.driver = driver
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Neo4j after retries: %w", err)
	}

	logger.Info("successfully connected to Neo4j")
	return nil
}

// Close closes the Neo4j connection
func (r *Neo4jRepository) Close(ctx context.Context) error {
	if r.driver != nil {
		return r.driver.Close(ctx)
	}
	return nil
}

func (r *Neo4jRepository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: r.config.Database,
		AccessMode:   mode,
	})
}

// StoreIndex replaces everything stored for idx.Source with idx
func (r *Neo4jRepository) StoreIndex(ctx context.Context, idx cmakedoc.Index) error {
	startTime := time.Now()
	r.ensureConstraints(ctx)

	params := BuildIndexParams(idx, startTime)

	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, clearFileQuery, map[string]any{"path": idx.Source}); err != nil {
			return nil, fmt.Errorf("failed to clear previous index: %w", err)
		}
		if _, err := tx.Run(ctx, createFileQuery, map[string]any{
			"file":      params.File,
			"callables": params.Callables,
		}); err != nil {
			return nil, fmt.Errorf("failed to create callables: %w", err)
		}
		if len(params.Calls) > 0 {
			if _, err := tx.Run(ctx, createCallsQuery, map[string]any{"calls": params.Calls}); err != nil {
				return nil, fmt.Errorf("failed to create calls: %w", err)
			}
		}
		if len(params.Keywords) > 0 {
			if _, err := tx.Run(ctx, createKeywordsQuery, map[string]any{"keywords": params.Keywords}); err != nil {
				return nil, fmt.Errorf("failed to create keywords: %w", err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return core.NewError(err, core.ErrorCodeStoreWrite, map[string]any{"path": idx.Source})
	}

	logger.Info("stored cmake index",
		"path", idx.Source,
		"callables", len(params.Callables),
		"calls", len(params.Calls),
		"keywords", len(params.Keywords),
		"duration", time.Since(startTime))
	return nil
}

// ClearFile removes a stored file with its callables and keywords
func (r *Neo4jRepository) ClearFile(ctx context.Context, path string) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, clearFileQuery, map[string]any{"path": path})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return core.NewError(fmt.Errorf("failed to clear %s: %w", path, err), core.ErrorCodeStoreWrite,
			map[string]any{"path": path})
	}

	logger.Info("cleared cmake index", "path", path)
	return nil
}

// Summary counts what is stored for path. A file that was never stored
// yields zero counts.
func (r *Neo4jRepository) Summary(ctx context.Context, path string) (*StoredFile, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	summary, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, summaryQuery, map[string]any{"path": path})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		out := &StoredFile{Path: path}
		if v, ok := record.Get("callables"); ok {
			out.Callables = toInt(v)
		}
		if v, ok := record.Get("keywords"); ok {
			out.Keywords = toInt(v)
		}
		if v, ok := record.Get("calls"); ok {
			out.Calls = toInt(v)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s: %w", path, err)
	}
	return summary.(*StoredFile), nil
}

// Query runs a read-only Cypher query and returns its rows as maps
func (r *Neo4jRepository) Query(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, 0, len(records))
		for _, record := range records {
			out = append(out, record.AsMap())
		}
		return out, nil
	})
	if err != nil {
		return nil, core.NewError(fmt.Errorf("query failed: %w", err), core.ErrorCodeInvalidInput, nil)
	}
	return rows.([]map[string]any), nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// ensureConstraints creates uniqueness constraints once per process
func (r *Neo4jRepository) ensureConstraints(ctx context.Context) {
	constraintMutex.Lock()
	defer constraintMutex.Unlock()

	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, query := range constraints {
		if _, err := session.Run(ctx, query, nil); err != nil {
			logger.Debug("failed to create constraint", "query", query, "error", err)
		}
	}
}

var constraints = []string{
	"CREATE CONSTRAINT IF NOT EXISTS FOR (n:" + string(core.NodeTypeFile) + ") REQUIRE n.path IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (n:" + string(core.NodeTypeCallable) + ") REQUIRE n.key IS UNIQUE",
	"CREATE INDEX IF NOT EXISTS FOR (n:" + string(core.NodeTypeKeyword) + ") ON (n.name)",
}
