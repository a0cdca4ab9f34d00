package commands

import (
	"fmt"
	"os"

	"github.com/compozy/testproject/pkg/config"
	"github.com/spf13/cobra"
)

func newInitCommand(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new testproject configuration file",
		Long: `Initialize creates a new testproject.yaml configuration file in the current
directory with default settings.

The configuration file includes:
  • Binding module name and call style
  • genmd defaults (input, output, title, index format)
  • Neo4j connection details for storing CMake indexes
  • LLM settings for drafting parameter descriptions
  • MCP path restrictions and logging preferences`,
		Example: `  # Create a default configuration file
  testproject init

  # Overwrite an existing one
  testproject init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile := config.DefaultConfigFileName
			if opts.cfgFile != "" {
				configFile = opts.cfgFile
			}

			if _, err := os.Stat(configFile); err == nil && !force {
				return fmt.Errorf("config file %s already exists. Use --force to overwrite", configFile)
			}

			if err := config.Save(config.DefaultConfig(), configFile); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration file '%s' created successfully\n", configFile)
			fmt.Fprintln(out, "\nNext steps:")
			fmt.Fprintln(out, "1. Edit the config file to set genmd defaults and the Neo4j connection")
			fmt.Fprintln(out, "2. Run 'testproject genmd <file.cmake>' to document your CMake helpers")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Force overwrite existing config file")
	return cmd
}
