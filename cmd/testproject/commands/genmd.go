package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/core"
	"github.com/compozy/testproject/engine/describe"
	"github.com/compozy/testproject/engine/infra"
	"github.com/compozy/testproject/pkg/config"
	"github.com/compozy/testproject/pkg/progress"
	"github.com/spf13/cobra"
)

type genmdFlags struct {
	output     string
	title      string
	index      string
	format     string
	store      bool
	describe   bool
	noProgress bool
}

func newGenmdCommand(opts *options) *cobra.Command {
	flags := &genmdFlags{}
	cmd := &cobra.Command{
		Use:   "genmd [input]",
		Short: "Generate Markdown docs from CMake functions and macros",
		Long: `Generate GitHub-friendly Markdown documentation from the function() and
macro() definitions of a CMake file. Comment blocks directly above a
definition become its description; cmake_parse_arguments calls become the
keyword argument list. Names starting with '_' are treated as private.

The input defaults to docs.input from the config (utils.cmake), the output to
docs.output (docs.md). Use '-o -' to print the Markdown instead.`,
		Example: `  # Document utils.cmake into docs.md
  testproject genmd

  # Custom input, output and title
  testproject genmd cmake/helpers.cmake -o HELPERS.md -t "Build Helpers"

  # Also write a YAML index and store it in Neo4j
  testproject genmd cmake/helpers.cmake --index helpers.yaml --store

  # Draft parameter descriptions with the configured LLM
  TESTPROJECT_LLM_API_KEY=sk-... testproject genmd --describe`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenmd(cmd, opts.config(), flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output Markdown file, '-' for stdout (default docs.output)")
	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "document title (default docs.title)")
	cmd.Flags().StringVar(&flags.index, "index", "", "also write the callable index to this file")
	cmd.Flags().StringVar(&flags.format, "format", "", "index format: json or yaml (default from extension or docs.index_format)")
	cmd.Flags().BoolVar(&flags.store, "store", false, "store the callable index in Neo4j")
	cmd.Flags().BoolVar(&flags.describe, "describe", false, "draft missing parameter descriptions with the configured LLM")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "disable the progress spinner")
	return cmd
}

func runGenmd(cmd *cobra.Command, cfg *config.Config, flags *genmdFlags, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	req := cmakedoc.Request{
		Input:    cfg.Docs.Input,
		Output:   cfg.Docs.Output,
		Title:    cfg.Docs.Title,
		Describe: flags.describe,
	}
	if len(args) == 1 {
		req.Input = args[0]
	}
	if flags.output != "" {
		req.Output = flags.output
	}
	if flags.title != "" {
		req.Title = flags.title
	}
	toStdout := req.Output == "-"
	if toStdout {
		req.Output = ""
	}

	var describer cmakedoc.Describer
	if flags.describe {
		d, err := describe.NewOpenAIDescriber(describe.Config{
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			BaseURL: cfg.LLM.BaseURL,
		})
		if err != nil {
			return err
		}
		describer = d
	}

	generator := cmakedoc.NewGenerator(describer)
	var result *cmakedoc.Result
	message := fmt.Sprintf("Generating docs from %s", req.Input)
	err := progress.WithProgressSteps(cmd.ErrOrStderr(), message, !flags.noProgress && !toStdout,
		func(_ func(string), step func(int, int)) error {
			req.Progress = step
			var err error
			result, err = generator.Generate(ctx, req)
			return err
		})
	if err != nil {
		return err
	}

	if flags.index != "" {
		if err := writeIndex(flags.index, indexFormat(flags, cfg), req.Input, result.Callables); err != nil {
			return err
		}
		fmt.Fprintf(out, "Index saved to: %s\n", flags.index)
	}

	if flags.store {
		if err := storeIndex(ctx, cmd, cfg, cmakedoc.Index{Source: req.Input, Callables: result.Callables}); err != nil {
			return err
		}
	}

	if toStdout {
		fmt.Fprint(out, result.Markdown)
		return nil
	}
	fmt.Fprintf(out, "✅ Success! Output saved to: %s\n", req.Output)
	return nil
}

// indexFormat prefers --format, then the index file extension, then config
func indexFormat(flags *genmdFlags, cfg *config.Config) string {
	if flags.format != "" {
		return flags.format
	}
	switch strings.ToLower(filepath.Ext(flags.index)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return cfg.Docs.IndexFormat
}

func writeIndex(path, format, source string, callables []*cmakedoc.Callable) error {
	f, err := os.Create(path)
	if err != nil {
		return core.NewError(fmt.Errorf("failed to create %s: %w", path, err), core.ErrorCodeWriteFailed,
			map[string]any{"path": path})
	}
	defer f.Close()
	return cmakedoc.ExportIndex(f, cmakedoc.Index{Source: source, Callables: callables}, format)
}

func storeIndex(ctx context.Context, cmd *cobra.Command, cfg *config.Config, idx cmakedoc.Index) error {
	repo, err := infra.NewNeo4jRepository(ctx, &infra.Neo4jConfig{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	})
	if err != nil {
		return err
	}
	defer repo.Close(ctx)

	if err := repo.StoreIndex(ctx, idx); err != nil {
		return err
	}
	summary, err := repo.Summary(ctx, idx.Source)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d callables, %d keywords and %d calls in Neo4j\n",
		summary.Callables, summary.Keywords, summary.Calls)
	return nil
}
