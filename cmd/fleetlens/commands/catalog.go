package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/fleetlens/pkg/observability"
)

func newCatalogCommand(global *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the metric catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			rt, err := setup(global, observability.ModeCLI)
			if err != nil {
				return err
			}

			defer func() { _ = rt.close() }()

			if format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), rt.cat.Definitions())
			}

			return rt.renderer().RenderCatalog(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatTable, "output format: table or json")

	return cmd
}
