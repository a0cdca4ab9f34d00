package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/compozy/testproject/engine/infra"
	"github.com/compozy/testproject/pkg/logger"
	"github.com/spf13/cobra"
)

// indexCleaner is the part of the index store the clear command needs
type indexCleaner interface {
	Summary(ctx context.Context, path string) (*infra.StoredFile, error)
	ClearFile(ctx context.Context, path string) error
}

type clearFlags struct {
	force  bool
	dryRun bool
}

func newClearCommand(opts *options) *cobra.Command {
	flags := &clearFlags{}
	cmd := &cobra.Command{
		Use:   "clear <path>",
		Short: "Remove a stored CMake index from Neo4j",
		Long: `Clear removes the index stored by 'genmd --store' for one CMake file: the
file node, its callables and their keywords. The path must match the input
path used when the index was stored.

Safety features:
  • Confirmation prompt before deletion (bypass with --force)
  • Dry-run mode to preview what will be deleted

WARNING: This operation cannot be undone!`,
		Example: `  # Clear the index of utils.cmake (with confirmation)
  testproject clear utils.cmake

  # See what would be cleared
  testproject clear utils.cmake --dry-run

  # Clear without confirmation prompt
  testproject clear cmake/helpers.cmake --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config()
			ctx := cmd.Context()
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
			return runClear(ctx, cmd, repo, args[0], flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Force clear without confirmation")
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "d", false, "Show what would be cleared without actually clearing")
	return cmd
}

func runClear(ctx context.Context, cmd *cobra.Command, store indexCleaner, path string, flags *clearFlags) error {
	out := cmd.OutOrStdout()
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path cannot be empty")
	}

	summary, err := store.Summary(ctx, path)
	if err != nil {
		return err
	}
	if summary.Callables == 0 {
		fmt.Fprintf(out, "Nothing stored for '%s'\n", path)
		return nil
	}
	target := fmt.Sprintf("'%s' (%d callables, %d keywords, %d calls)",
		path, summary.Callables, summary.Keywords, summary.Calls)

	if flags.dryRun {
		fmt.Fprintf(out, "DRY RUN: would clear %s\n", target)
		return nil
	}

	if !flags.force {
		fmt.Fprintf(out, "\n⚠️  WARNING: This will permanently delete the index of %s!\n", target)
		fmt.Fprint(out, "Are you sure you want to continue? [y/N]: ")

		response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && response == "" {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			logger.Info("operation canceled")
			fmt.Fprintln(out, "Canceled")
			return nil
		}
	}

	if err := store.ClearFile(ctx, path); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Cleared %s\n", target)
	return nil
}
