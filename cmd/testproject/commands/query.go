package commands

import (
	"fmt"
	"strings"

	"github.com/compozy/testproject/engine/infra"
	"github.com/compozy/testproject/engine/query"
	"github.com/spf13/cobra"
)

func newQueryCommand(opts *options) *cobra.Command {
	var (
		list   bool
		params []string
		format string
	)
	cmd := &cobra.Command{
		Use:   "query [template]",
		Short: "Run a query template against stored CMake indexes",
		Long: `Run one of the built-in Cypher templates against the CMake indexes stored
with 'genmd --store'. Parameters are passed as key=value pairs; use --list to
see every template with the parameters it needs.`,
		Example: `  # List templates
  testproject query --list

  # Who calls _tp_check_var_defined in utils.cmake
  testproject query callers --param path=utils.cmake --param name=_tp_check_var_defined

  # Required keywords as CSV
  testproject query required_keywords --param path=utils.cmake --format csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list || len(args) == 0 {
				printTemplates(cmd)
				return nil
			}

			template, err := query.GetTemplate(args[0])
			if err != nil {
				return err
			}
			values, err := query.ParseParams(params)
			if err != nil {
				return err
			}
			cypher, bound, err := template.BuildQuery(values)
			if err != nil {
				return fmt.Errorf("%w\n%s", err, template.GetParameterHelp())
			}
			exportFormat, err := query.ParseFormat(format)
			if err != nil {
				return err
			}

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

			rows, err := repo.Query(ctx, cypher, bound)
			if err != nil {
				return err
			}
			return query.NewExporter(query.DefaultExportOptions(exportFormat)).Export(out, rows)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list the available templates")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "template parameter as key=value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml, csv or tsv")
	return cmd
}

func printTemplates(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Available query templates:")
	for _, name := range query.TemplateNames() {
		template := query.CommonTemplates[name]
		fmt.Fprintf(out, "\n  %s (%s)\n    %s\n", name, template.Category, template.Description)
		help := strings.TrimSpace(template.GetParameterHelp())
		for _, line := range strings.Split(help, "\n") {
			fmt.Fprintf(out, "    %s\n", strings.TrimSpace(line))
		}
	}
}
