package commands

import (
	"fmt"

	"github.com/compozy/testproject/engine/binding"
	pkgerrors "github.com/compozy/testproject/pkg/errors"
	"github.com/spf13/cobra"
)

// newModule builds the binding module from config, with a --style override
func newModule(opts *options, styleFlag string) (*binding.Module, error) {
	cfg := opts.config()
	raw := cfg.Bindings.Style
	if styleFlag != "" {
		raw = styleFlag
	}
	style, err := binding.ParseStyle(raw)
	if err != nil {
		return nil, err
	}
	return binding.NewModule(
		binding.WithName(cfg.Bindings.ModuleName),
		binding.WithStyle(style),
	), nil
}

func newCallCommand(opts *options) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "call <Class.method> [args...]",
		Short: "Call a binding method by symbol",
		Long: `Call dispatches through the binding module exactly as a foreign caller would.
Arguments are converted to the method's declared parameter kinds; a wrong
count or kind fails with INVALID_ARGUMENT and an unknown symbol with
UNKNOWN_SYMBOL.

With --style instance an object of the class is constructed first and the
method is called on it; with --style static the method is called on the class.`,
		Example: `  testproject call Math.add 2 3
  testproject call StringUtils.brackets hello --style instance`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkgerrors.WithRecover("call", func() error {
				module, err := newModule(opts, style)
				if err != nil {
					return err
				}
				class, method, err := binding.SplitSymbol(args[0])
				if err != nil {
					return err
				}
				meth, err := module.Lookup(class, method)
				if err != nil {
					return err
				}
				values, err := binding.ParseArgs(meth, args[1:])
				if err != nil {
					return err
				}
				result, err := module.Invoke(class, method, values...)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), binding.FormatResult(result))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&style, "style", "", "binding style: static or instance (default from config)")
	return cmd
}

func newBindingsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bindings",
		Short: "Describe the classes and methods of the binding module",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := newModule(opts, "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Module: %s (%s)\n", module.Name(), module.Style())
			for _, sig := range module.Describe() {
				fmt.Fprintln(out, "  "+sig)
			}
			return nil
		},
	}
}
