package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/versemark/versemark-server/internal/service"
)

func addCategories(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "List, inspect and delete categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newCategoriesListCmd(a))
	cmd.AddCommand(newCategoriesShowCmd(a))
	cmd.AddCommand(newCategoriesDeleteCmd(a))
	topLevel.AddCommand(cmd)
}

func newCategoriesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every category, OTHER last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			categories, err := invoke[*service.CategoryService](a)
			if err != nil {
				return err
			}
			list, err := categories.ListCategories(cmd.Context())
			if err != nil {
				return err
			}
			printCategories(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func newCategoriesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the highlights that belong to a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := invoke[*service.Resolver](a)
			if err != nil {
				return err
			}
			hs, err := resolver.HighlightsForCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printHighlights(cmd.OutOrStdout(), hs)
			return nil
		},
	}
}

func newCategoriesDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category's highlights and remove the label from its colors",
		Long: "Delete every highlight in the category. Highlights on colors shared with\n" +
			"another category are kept unless their explicit label or verse text points\n" +
			"only at this one.",
		Example: `
versectl categories delete Joy
versectl categories delete OTHER --yes
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete category %q and its highlights?", name))
				if err != nil {
					return err
				}
				if !ok {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "aborted")
					return nil
				}
			}

			deletion, err := invoke[*service.DeletionService](a)
			if err != nil {
				return err
			}
			// A partial failure still returns the report alongside the error.
			report, err := deletion.DeleteCategory(cmd.Context(), name)
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question and reads one line of input.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	_, _ = fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
