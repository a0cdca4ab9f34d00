package commands

import (
	"fmt"

	"github.com/compozy/testproject/engine/pymodule"
	"github.com/compozy/testproject/pkg/logger"
	"github.com/spf13/cobra"
)

func newModnameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modname <file> [expected-module-name]",
		Short: "Print or check the module name of a Python extension",
		Long: `Read the PyInit_<name> symbol from a compiled .so or .pyd extension module.
With one argument the name is printed. With an expected name the command
prints nothing and fails when the names differ.`,
		Example: `  testproject modname build/test_project_bindings.so
  testproject modname build/test_project_bindings.so test_project_bindings`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return pymodule.Check(args[0], args[1])
			}
			name, err := pymodule.Inspect(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				logger.Warn("no PyInit_ symbol found", "path", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}
