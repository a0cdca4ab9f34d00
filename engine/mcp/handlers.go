package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/compozy/testproject/engine/binding"
	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/core"
	"github.com/compozy/testproject/engine/pymodule"
	"github.com/compozy/testproject/engine/query"
	"github.com/compozy/testproject/pkg/logger"
	"github.com/mark3labs/mcp-go/mcp"
)

// bindingHandler dispatches a tool call through the binding module. Argument
// kinds are checked by the module, not here.
func (s *Server) bindingHandler(bt bindingTool) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := req.GetArguments()
		args := make([]any, len(bt.params))
		for i, name := range bt.params {
			v, ok := raw[name]
			if !ok {
				return toolError(core.Errorf(core.ErrorCodeInvalidArgument, map[string]any{"param": name},
					"%s is required", name)), nil
			}
			args[i] = v
		}

		result, err := s.module.Invoke(bt.class, bt.method, args...)
		if err != nil {
			return toolError(err), nil
		}
		logger.Debug("binding call", "tool", bt.name, "class", bt.class, "method", bt.method)
		return mcp.NewToolResultText(binding.FormatResult(result)), nil
	}
}

func (s *Server) handleListBindings(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return newToolResultFromResponse(&ToolResponse{
		Content: []any{s.bindingsSummary()},
	})
}

func (s *Server) bindingsSummary() map[string]any {
	return map[string]any{
		"module":  s.module.Name(),
		"style":   string(s.module.Style()),
		"methods": s.module.Describe(),
	}
}

// HandleBindingsResource serves the binding module summary as JSON
func (s *Server) HandleBindingsResource(_ context.Context) ([]byte, error) {
	return json.Marshal(s.bindingsSummary())
}

func (s *Server) handleGenerateDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return toolError(core.NewError(err, core.ErrorCodeInvalidInput, nil)), nil
	}
	output := getString(req, "output")
	store := getBool(req, "store")

	if err := s.checkInput(input); err != nil {
		return toolError(err), nil
	}
	if err := s.checkPaths(output); err != nil {
		return toolError(err), nil
	}
	if store && s.store == nil {
		return mcp.NewToolResultError("index store is not configured"), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Performance.RequestTimeout)
	defer cancel()

	result, err := s.generator.Generate(ctx, cmakedoc.Request{
		Input:    input,
		Output:   output,
		Title:    getString(req, "title"),
		Describe: getBool(req, "describe"),
	})
	if err != nil {
		return toolError(err), nil
	}

	if store {
		idx := cmakedoc.Index{Source: input, Callables: result.Callables}
		if err := s.store.StoreIndex(ctx, idx); err != nil {
			return toolError(err), nil
		}
	}

	if output == "" {
		return mcp.NewToolResultText(result.Markdown), nil
	}
	return newToolResultFromResponse(&ToolResponse{
		Content: []any{map[string]any{
			"id":        result.ID.String(),
			"input":     result.Input,
			"output":    result.Output,
			"callables": result.GenerationResult.Callables,
			"public":    result.Public,
			"described": result.Described,
			"stored":    store,
		}},
	})
}

func (s *Server) handleCMakeIndex(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return toolError(core.NewError(err, core.ErrorCodeInvalidInput, nil)), nil
	}
	if err := s.checkInput(input); err != nil {
		return toolError(err), nil
	}

	callables, err := cmakedoc.ParseFile(input)
	if err != nil {
		return toolError(err), nil
	}
	var buf bytes.Buffer
	idx := cmakedoc.Index{Source: input, Callables: callables}
	if err := cmakedoc.ExportIndex(&buf, idx, getString(req, "format")); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleQueryIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	querier, ok := s.store.(IndexQuerier)
	if !ok {
		return toolError(core.Errorf(core.ErrorCodeInvalidInput, nil, "no index store configured")), nil
	}
	name, err := req.RequireString("template")
	if err != nil {
		return toolError(core.NewError(err, core.ErrorCodeInvalidInput, nil)), nil
	}
	template, err := query.GetTemplate(name)
	if err != nil {
		return toolError(err), nil
	}
	format, err := query.ParseFormat(getString(req, "format"))
	if err != nil {
		return toolError(err), nil
	}

	params, _ := req.GetArguments()["params"].(map[string]any)
	cypher, bound, err := template.BuildQuery(params)
	if err != nil {
		return toolError(err), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Performance.RequestTimeout)
	defer cancel()
	rows, err := querier.Query(ctx, cypher, bound)
	if err != nil {
		return toolError(err), nil
	}

	var buf bytes.Buffer
	if err := query.NewExporter(query.DefaultExportOptions(format)).Export(&buf, rows); err != nil {
		return toolError(err), nil
	}
	logger.Debug("query_cmake_index", "template", name, "rows", len(rows))
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handlePythonModuleName(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return toolError(core.NewError(err, core.ErrorCodeInvalidInput, nil)), nil
	}
	if err := s.checkInput(path); err != nil {
		return toolError(err), nil
	}

	expected := getString(req, "expected")
	if expected != "" {
		if err := pymodule.Check(path, expected); err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Module name '%s' matches", expected)), nil
	}

	name, err := pymodule.Inspect(path)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(name), nil
}

// checkPaths applies the security policy to every non-empty path
func (s *Server) checkPaths(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.config.Security.CheckPath(p); err != nil {
			logger.Warn("path rejected by security policy", "path", p)
			return core.NewError(err, core.ErrorCodeInvalidInput, map[string]any{"path": p})
		}
	}
	return nil
}

// checkInput applies the security policy and the size limit to a file the
// tool is about to read. Missing files are left to the reader to report.
func (s *Server) checkInput(path string) error {
	if err := s.checkPaths(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil
	}
	if limit := s.config.Performance.MaxFileSize; limit > 0 && info.Size() > limit {
		logger.Warn("file exceeds size limit", "path", path, "size", info.Size(), "limit", limit)
		return core.Errorf(core.ErrorCodeInvalidInput,
			map[string]any{"path": path, "size": info.Size(), "limit": limit},
			"%s is %d bytes, exceeds max_file_size of %d", path, info.Size(), limit)
	}
	return nil
}
