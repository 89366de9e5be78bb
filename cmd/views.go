package cmd

import (
	"fmt"

	"github.com/KaramelBytes/datalens/internal/views"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List, show or delete saved chart views",
}

var viewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved views",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := views.Open(settings().ViewsDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		list := s.List()
		if len(list) == 0 {
			fmt.Fprintln(out, "No saved views")
			return nil
		}
		for _, v := range list {
			c := v.Config
			fmt.Fprintf(out, "%s\t%s of %s by %s\t%s\n", v.Name, c.Aggregation, c.ValueColumn, c.GroupKeyColumn, v.Dataset)
		}
		return nil
	},
}

var viewsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved view as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := views.Open(settings().ViewsDir)
		if err != nil {
			return err
		}
		v, err := s.Get(args[0])
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal view: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var viewsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := views.Open(settings().ViewsDir)
		if err != nil {
			return err
		}
		if err := s.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted view '%s'\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewsCmd)
	viewsCmd.AddCommand(viewsListCmd)
	viewsCmd.AddCommand(viewsShowCmd)
	viewsCmd.AddCommand(viewsDeleteCmd)
}
