package commands

import (
	"fmt"

	"github.com/compozy/testproject/engine/binding"
	"github.com/compozy/testproject/engine/mathutil"
	"github.com/compozy/testproject/engine/strutil"
	"github.com/spf13/cobra"
)

func newMathCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "math",
		Short: "Add or multiply two numbers",
		Example: `  testproject math add 2 3
  testproject math multiply 4 5`,
	}

	var m mathutil.Math
	module := binding.NewModule()
	ops := []struct {
		method string
		short  string
		fn     func(a, b float64) float64
	}{
		{"add", "Print a + b", m.Add},
		{"multiply", "Print a * b", m.Multiply},
	}
	for _, op := range ops {
		cmd.AddCommand(&cobra.Command{
			Use:   op.method + " <a> <b>",
			Short: op.short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				meth, err := module.Lookup("Math", op.method)
				if err != nil {
					return err
				}
				values, err := binding.ParseArgs(meth, args)
				if err != nil {
					return err
				}
				a, b := values[0].(float64), values[1].(float64)
				fmt.Fprintln(cmd.OutOrStdout(), binding.FormatResult(op.fn(a, b)))
				return nil
			},
		})
	}
	return cmd
}

func newStrCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "str",
		Short: "Uppercase, reverse or bracket a string",
		Example: `  testproject str upper hello
  testproject str reverse hello
  testproject str brackets hello`,
	}

	var s strutil.StringUtils
	ops := []struct {
		use   string
		short string
		fn    func(string) string
	}{
		{"upper <s>", "Uppercase the ASCII letters of s", s.ToUpper},
		{"reverse <s>", "Reverse s byte by byte", s.Reverse},
		{"brackets <s>", "Wrap s in square brackets", s.Brackets},
	}
	for _, op := range ops {
		cmd.AddCommand(&cobra.Command{
			Use:   op.use,
			Short: op.short,
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), op.fn(args[0]))
			},
		})
	}
	return cmd
}
