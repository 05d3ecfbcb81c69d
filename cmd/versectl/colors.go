package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/versemark/versemark-server/internal/service"
)

func addColors(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "colors",
		Aliases: []string{"color"},
		Short:   "Manage color to category assignments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newColorsLabelCmd(a))
	cmd.AddCommand(newColorsUnlabelCmd(a))
	cmd.AddCommand(newColorsImportCmd(a))
	topLevel.AddCommand(cmd)
}

func newColorsLabelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "label <hex> <labels>",
		Short: "Set the category labels of a palette color",
		Long: "Set the category labels of a palette color. Labels are separated by\n" +
			"commas or slashes and replace whatever the color had before.",
		Example: `
versectl colors label '#4CAF50' 'Peace, Joy'
versectl colors label 4CAF50 Faith/Hope
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := invoke[*service.CategoryService](a)
			if err != nil {
				return err
			}
			assignment, err := categories.SetLabel(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printAssignment(cmd.OutOrStdout(), assignment)
			return nil
		},
	}
}

func newColorsUnlabelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlabel <hex>",
		Short: "Remove a color's assignment so it falls under OTHER",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := invoke[*service.CategoryService](a)
			if err != nil {
				return err
			}
			if err := categories.DeleteAssignment(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s unassigned\n", args[0])
			return nil
		},
	}
}

func newColorsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import legacy color to label rows",
		Long: "Import a YAML mapping of color hex to raw label text, as written by older\n" +
			"clients. Empty values are kept as unassigned rows.",
		Example: `
# legacy.yaml
"#FFEB3B": "Faith/Hope"
"#4CAF50": ""
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var rows map[string]string
			if err := yaml.Unmarshal(data, &rows); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			categories, err := invoke[*service.CategoryService](a)
			if err != nil {
				return err
			}
			n, err := categories.ImportLegacy(cmd.Context(), rows)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d rows\n", n, len(rows))
			return nil
		},
	}
}
