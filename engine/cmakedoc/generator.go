package cmakedoc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/compozy/testproject/engine/core"
	pkgerrors "github.com/compozy/testproject/pkg/errors"
	"github.com/compozy/testproject/pkg/logger"
)

const (
	DefaultInput  = "utils.cmake"
	DefaultOutput = "docs.md"
	DefaultTitle  = "CMake Documentation"
)

// Describer drafts descriptions for a callable's parameters and keywords
type Describer interface {
	Describe(ctx context.Context, c *Callable) (Descriptions, error)
}

// Request describes one documentation run
type Request struct {
	Input    string
	Output   string // empty means do not write a file
	Title    string
	Describe bool
	// Progress, when set, is called after each public callable is described
	Progress func(done, total int)
}

// Result is the outcome of a documentation run
type Result struct {
	core.GenerationResult
	Markdown  string
	Callables []*Callable
}

// Generator reads a CMake file, renders Markdown and writes it out
type Generator struct {
	describer Describer
	now       func() time.Time
}

// NewGenerator creates a generator. describer may be nil.
func NewGenerator(describer Describer) *Generator {
	return &Generator{describer: describer, now: time.Now}
}

// ParseFile reads and parses a CMake file
func ParseFile(path string) ([]*Callable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.NewError(fmt.Errorf("file not found: %s", path), core.ErrorCodeFileNotFound,
				map[string]any{"path": path})
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	callables, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return callables, nil
}

// Generate runs the whole pipeline for req
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Input == "" {
		req.Input = DefaultInput
	}
	if req.Title == "" {
		req.Title = DefaultTitle
	}
	start := g.now()

	logger.Debug("reading cmake file", "path", req.Input)
	callables, err := ParseFile(req.Input)
	if err != nil {
		return nil, err
	}
	if len(callables) == 0 {
		logger.Warn("no functions or macros found", "path", req.Input)
	}

	public := 0
	for _, c := range callables {
		if c.Public() {
			public++
		}
	}

	descriptions, described := g.describe(ctx, req, callables)

	md := Render(callables, RenderOptions{
		Title:        req.Title,
		SourceName:   filepath.Base(req.Input),
		Descriptions: descriptions,
	})

	if req.Output != "" {
		if err := os.WriteFile(req.Output, []byte(md), 0o644); err != nil {
			return nil, core.NewError(fmt.Errorf("failed to write %s: %w", req.Output, err),
				core.ErrorCodeWriteFailed, map[string]any{"path": req.Output})
		}
		logger.Info("documentation written", "output", req.Output, "callables", public)
	}

	return &Result{
		GenerationResult: core.GenerationResult{
			ID:          core.NewID(),
			Input:       req.Input,
			Output:      req.Output,
			Callables:   len(callables),
			Public:      public,
			Described:   described,
			GeneratedAt: start,
			Duration:    g.now().Sub(start),
		},
		Markdown:  md,
		Callables: callables,
	}, nil
}

func (g *Generator) describe(ctx context.Context, req Request, callables []*Callable) (Descriptions, int) {
	if !req.Describe || g.describer == nil {
		return nil, 0
	}
	var public []*Callable
	for _, c := range callables {
		if c.Public() {
			public = append(public, c)
		}
	}
	all := make(Descriptions)
	described := 0
	degrade := &pkgerrors.GracefulDegradeConfig{LogWarning: true}
	for i, c := range public {
		if ctx.Err() != nil {
			break
		}
		d := pkgerrors.WithGracefulDegrade("describe_"+c.Name, degrade, Descriptions(nil), func() (Descriptions, error) {
			return g.describer.Describe(ctx, c)
		})
		if req.Progress != nil {
			req.Progress(i+1, len(public))
		}
		if len(d) == 0 {
			continue
		}
		described++
		for k, v := range d {
			all[k] = v
		}
	}
	return all, described
}
