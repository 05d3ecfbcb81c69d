package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/versemark/versemark-server/internal/labels"
	"github.com/versemark/versemark-server/internal/service"
)

func addPalette(topLevel *cobra.Command, a *app) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "palette",
		Short: "Show the palette colors and their labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := invoke[*service.CategoryService](a)
			if err != nil {
				return err
			}
			byColor, err := categories.LabelsByColor(cmd.Context())
			if err != nil {
				return err
			}

			tbl := newTable("HEX", "NAME", "LABELS")
			for _, c := range categories.Palette() {
				assigned := labels.Join(byColor[c.Hex])
				if assigned == "" {
					assigned = faint.Sprint("-")
				}
				tbl.AddRow(c.Hex, c.DefaultName, assigned)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	})
}
