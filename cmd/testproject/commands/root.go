package commands

import (
	"errors"
	"io/fs"

	"github.com/compozy/testproject/pkg/config"
	"github.com/compozy/testproject/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options carries global flags and the loaded configuration to subcommands
type options struct {
	cfgFile string
	debug   bool
	cfg     *config.Config
}

// config returns the loaded configuration, or the defaults before loading
func (o *options) config() *config.Config {
	if o.cfg == nil {
		return config.DefaultConfig()
	}
	return o.cfg
}

// load reads .env, the config file and applies the logging settings
func (o *options) load(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	return logger.Configure(cfg.Log.Level, cfg.Log.Format, o.debug)
}

// NewRootCommand builds the testproject command tree
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "testproject",
		Short: "Math and string utilities with a binding layer and CMake tooling",
		Long: `testproject exposes two small utility components, Math and StringUtils,
through a foreign-callable binding module, together with the build tooling that
ships with the project.

Key Features:
  • Add and multiply numbers, uppercase, reverse and bracket strings
  • Call any binding method by its Class.method symbol
  • Generate Markdown documentation from CMake functions and macros
  • Check the module name compiled into a Python extension
  • Serve every operation as an MCP tool

Example workflow:
  1. Initialize configuration:  testproject init
  2. Call a binding:            testproject call Math.add 2 3
  3. Document CMake helpers:    testproject genmd cmake/utils.cmake -o docs.md`,
		SilenceUsage:      true,
		PersistentPreRunE: opts.load,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./testproject.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newVersionCommand(),
		newInitCommand(opts),
		newMathCommand(),
		newStrCommand(),
		newCallCommand(opts),
		newBindingsCommand(opts),
		newGenmdCommand(opts),
		newModnameCommand(),
		newQueryCommand(opts),
		newClearCommand(opts),
		newServeMCPCommand(opts),
	)

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	cobra.CheckErr(NewRootCommand().Execute())
}
