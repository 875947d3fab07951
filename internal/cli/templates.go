package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/msareview/internal/review"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect and validate prompt templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list [pack.yaml]",
	Short: "List prompt templates, with an optional YAML pack applied",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := review.NewTemplates()
		if len(args) == 1 {
			loaded, err := review.LoadTemplates(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitUsageError
				return nil
			}
			t = loaded
		}
		for _, id := range t.IDs() {
			tpl, err := t.Get(id)
			if err != nil {
				return err
			}
			format := "free text"
			if tpl.Format != nil {
				format = tpl.Format.Name
				if format == "" {
					format = strings.Join(tpl.Format.Fields, "/")
				}
			}
			fmt.Fprintf(os.Stdout, "%-14s vars: %-28s format: %s\n", id, strings.Join(tpl.Variables, ", "), format)
		}
		return nil
	},
}

var templatesCheckCmd = &cobra.Command{
	Use:   "check <pack.yaml>",
	Short: "Validate a YAML template pack",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := review.LoadTemplates(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}
		fmt.Fprintf(os.Stdout, "OK: %s\n", args[0])
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesCheckCmd)
}
