package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/skillquest/internal/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and scaffold rule documents",
	}
	cmd.AddCommand(newRulesCheckCmd(), newRulesInitCmd())
	return cmd
}

func newRulesCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [path]",
		Short: "Load a rule document and summarize it",
		Long:  "Loads the rule document at path, or the bundled document when no path is given, and prints what it defines.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			r, err := loadRules(path)
			if err != nil {
				return err
			}

			if path == "" {
				path = "(bundled)"
			}
			sum := r.Summarize()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Rules:\t%s\n", path)
			fmt.Fprintf(tw, "Weighted domains:\t%d\n", len(r.Weights))
			fmt.Fprintf(tw, "Catalog domains:\t%d\n", sum.Domains)
			fmt.Fprintf(tw, "Courses:\t%d\n", sum.Courses)
			fmt.Fprintf(tw, "Resources:\t%d\n", sum.Resources)
			fmt.Fprintf(tw, "Recommendations:\t%d\n", sum.Recommendations)
			fmt.Fprintf(tw, "Weekly habits:\t%d\n", sum.Habits)
			fmt.Fprintf(tw, "Weeks:\t%d\n", sum.Weeks)
			return tw.Flush()
		},
	}
}

func newRulesInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write the bundled rule document to path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", path, err)
			}

			if err := os.WriteFile(path, rules.DefaultDocument(), 0644); err != nil {
				return fmt.Errorf("write rules: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}
