package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/testproject/engine/binding"
	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/query"
	"github.com/compozy/testproject/pkg/logger"
	mcpconfig "github.com/compozy/testproject/pkg/mcp"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server
type Server struct {
	config    *mcpconfig.Config
	module    *binding.Module
	generator *cmakedoc.Generator
	store     IndexStore
	mcpServer *server.MCPServer
}

// Option configures a Server
type Option func(*Server)

// WithIndexStore enables the store flag of generate_cmake_docs
func WithIndexStore(store IndexStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// NewServer creates a new MCP server instance
func NewServer(
	config *mcpconfig.Config,
	module *binding.Module,
	generator *cmakedoc.Generator,
	opts ...Option,
) *Server {
	if config == nil {
		config = mcpconfig.DefaultConfig()
	}
	if module == nil {
		module = binding.NewModule()
	}
	if generator == nil {
		generator = cmakedoc.NewGenerator(nil)
	}
	s := &Server{
		config:    config,
		module:    module,
		generator: generator,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcpServer = server.NewMCPServer(
		config.Server.Name,
		config.Server.Version,
		server.WithToolCapabilities(false), // Static tool set
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// Start serves MCP over stdio until the client disconnects
func (s *Server) Start(_ context.Context) error {
	logger.Info("Starting MCP server on stdio", "module", s.module.Name())
	return server.ServeStdio(s.mcpServer)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.registerBindingTools()
	if s.config.Features.EnableDocs {
		s.registerDocTools()
	}
	if s.config.Features.EnableModuleCheck {
		s.registerModuleTools()
	}
}

// registerBindingTools exposes every binding method as a tool
func (s *Server) registerBindingTools() {
	for _, bt := range bindingTools {
		meth, err := s.module.Lookup(bt.class, bt.method)
		if err != nil {
			logger.Warn("binding method not registered", "class", bt.class, "method", bt.method)
			continue
		}
		opts := []mcp.ToolOption{mcp.WithDescription(fmt.Sprintf("%s (%s.%s)", bt.description, bt.class, meth.Signature()))}
		for i, kind := range meth.Params {
			name := bt.params[i]
			switch kind {
			case binding.KindNumber:
				opts = append(opts, mcp.WithNumber(name, mcp.Required(), mcp.Description("Numeric operand")))
			default:
				opts = append(opts, mcp.WithString(name, mcp.Required(), mcp.Description("Input string")))
			}
		}
		s.mcpServer.AddTool(mcp.NewTool(bt.name, opts...), s.bindingHandler(bt))
	}

	listBindingsTool := mcp.NewTool(
		"list_bindings",
		mcp.WithDescription("List the classes and method signatures of the binding module"),
	)
	s.mcpServer.AddTool(listBindingsTool, s.handleListBindings)
}

// registerDocTools registers the CMake documentation tools
func (s *Server) registerDocTools() {
	generateTool := mcp.NewTool(
		"generate_cmake_docs",
		mcp.WithDescription("Generate Markdown documentation from the functions and macros of a CMake file"),
		mcp.WithString("input", mcp.Required(), mcp.Description("Path to the CMake file")),
		mcp.WithString("output", mcp.Description("Markdown file to write (optional, returns the Markdown when empty)")),
		mcp.WithString("title", mcp.Description("Document title (default: CMake Documentation)")),
		mcp.WithBoolean("describe", mcp.Description("Draft parameter descriptions with the configured LLM")),
		mcp.WithBoolean("store", mcp.Description("Store the parsed index in Neo4j")),
	)
	s.mcpServer.AddTool(generateTool, s.handleGenerateDocs)

	indexTool := mcp.NewTool(
		"cmake_index",
		mcp.WithDescription("Return the parsed function/macro index of a CMake file"),
		mcp.WithString("input", mcp.Required(), mcp.Description("Path to the CMake file")),
		mcp.WithString("format", mcp.Description("'json' or 'yaml' (default: json)")),
	)
	s.mcpServer.AddTool(indexTool, s.handleCMakeIndex)

	if _, ok := s.store.(IndexQuerier); ok {
		queryTool := mcp.NewTool(
			"query_cmake_index",
			mcp.WithDescription("Run a query template against the CMake indexes stored in Neo4j"),
			mcp.WithString("template", mcp.Required(),
				mcp.Description("Template name: "+strings.Join(query.TemplateNames(), ", "))),
			mcp.WithObject("params", mcp.Description("Template parameters, e.g. {\"path\": \"utils.cmake\"}")),
			mcp.WithString("format", mcp.Description("'json', 'yaml', 'csv' or 'tsv' (default: json)")),
		)
		s.mcpServer.AddTool(queryTool, s.handleQueryIndex)
	}
}

// registerModuleTools registers the extension module tools
func (s *Server) registerModuleTools() {
	moduleNameTool := mcp.NewTool(
		"python_module_name",
		mcp.WithDescription("Read the PyInit_ module name from a compiled .so or .pyd extension"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the extension module")),
		mcp.WithString("expected", mcp.Description("Expected module name (optional)")),
	)
	s.mcpServer.AddTool(moduleNameTool, s.handlePythonModuleName)
}

// registerResources registers all MCP resources
func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		"bindings://module",
		"binding_module",
		mcp.WithResourceDescription("Classes and method signatures of the binding module"),
		mcp.WithMIMEType("application/json"),
	), wrapResourceHandler("bindings://module", s.HandleBindingsResource))
}
