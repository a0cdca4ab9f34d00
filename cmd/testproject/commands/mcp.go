package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/describe"
	"github.com/compozy/testproject/engine/infra"
	"github.com/compozy/testproject/engine/mcp"
	"github.com/compozy/testproject/pkg/config"
	"github.com/compozy/testproject/pkg/logger"
	mcpconfig "github.com/compozy/testproject/pkg/mcp"
	"github.com/spf13/cobra"
)

func newServeMCPCommand(opts *options) *cobra.Command {
	var withStore bool
	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Start MCP server to expose testproject operations to LLM applications",
		Long: `Start the Model Context Protocol (MCP) server on stdio. Every operation is
exposed as a tool:

  • math_add, math_multiply, string_to_upper, string_reverse, string_brackets
  • list_bindings
  • generate_cmake_docs, cmake_index
  • python_module_name
  • query_cmake_index (with --with-store)

File access is limited by mcp.allowed_paths and mcp.forbidden_paths.`,
		Example: `  # Start MCP server (stdio transport)
  testproject serve-mcp

  # Store and query CMake indexes in Neo4j
  testproject serve-mcp --with-store`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			cfg := opts.config()
			mcpCfg := mcpConfigFrom(cfg)
			if err := mcpCfg.Validate(); err != nil {
				return err
			}

			module, err := newModule(opts, "")
			if err != nil {
				return err
			}

			var serverOpts []mcp.Option
			if withStore {
				repo, err := infra.NewNeo4jRepository(ctx, &infra.Neo4jConfig{
					URI:      cfg.Neo4j.URI,
					Username: cfg.Neo4j.Username,
					Password: cfg.Neo4j.Password,
					Database: cfg.Neo4j.Database,
				})
				if err != nil {
					return err
				}
				defer repo.Close(context.Background())
				serverOpts = append(serverOpts, mcp.WithIndexStore(repo))
			}

			server := mcp.NewServer(mcpCfg, module, cmakedoc.NewGenerator(newDescriber(cfg)), serverOpts...)
			runMCPServerWithGracefulShutdown(ctx, cancel, server)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withStore, "with-store", false, "connect to Neo4j to store indexes and enable query_cmake_index")
	return cmd
}

// mcpConfigFrom applies the mcp section of the app config to the server defaults
func mcpConfigFrom(cfg *config.Config) *mcpconfig.Config {
	mcpCfg := mcpconfig.DefaultConfig()
	mcpCfg.Security.AllowedPaths = cfg.MCP.AllowedPaths
	mcpCfg.Security.ForbiddenPaths = cfg.MCP.ForbiddenPaths
	return mcpCfg
}

// newDescriber returns an LLM describer when an API key is configured
func newDescriber(cfg *config.Config) cmakedoc.Describer {
	if cfg.LLM.APIKey == "" {
		return nil
	}
	d, err := describe.NewOpenAIDescriber(describe.Config{
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		BaseURL: cfg.LLM.BaseURL,
	})
	if err != nil {
		logger.Warn("describer disabled", "error", err)
		return nil
	}
	return d
}

func runMCPServerWithGracefulShutdown(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go startMCPServer(ctx, cancel, server)

	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
	case <-ctx.Done():
		logger.Info("MCP server stopped")
	}
}

func startMCPServer(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	defer cancel()
	if err := server.Start(ctx); err != nil {
		logger.Error("MCP server error", "error", err)
	}
}
