package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/blogshell/app"
	"github.com/vango-dev/blogshell/pkg/posts"
	"github.com/vango-dev/blogshell/pkg/router"
)

func routesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the route table",
		Long: `Print the application's route table.

The table is validated exactly as at server startup, so this command
also reports configuration errors in the route tree.

Output formats:
  tree   the route tree with deferred modules, loaders and boundaries
  json   the matchable patterns as JSON
  yaml   the matchable patterns as YAML`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(posts.NewMemoryStore(), app.Options{})
			if err != nil {
				return err
			}
			return printRoutes(cmd.OutOrStdout(), a.Router, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "tree", "Output format: tree, json, yaml")

	return cmd
}

func printRoutes(w io.Writer, r *router.Router, format string) error {
	switch format {
	case "tree":
		var err error
		r.Walk(func(n router.NodeInfo) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintln(w, treeLine(n))
		})
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.Table())
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r.Table()); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q (want tree, json or yaml)", format)
}

func treeLine(n router.NodeInfo) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", n.Depth))

	switch {
	case n.Index:
		b.WriteString("(index)")
	case n.Path == "":
		b.WriteString("(layout)")
	default:
		b.WriteString(n.Path)
	}
	b.WriteString(" [" + n.ID + "]")

	if n.Module != "" {
		b.WriteString(" lazy=" + n.Module)
	}
	if n.Loader {
		b.WriteString(" loader")
	}
	if n.Boundary {
		b.WriteString(" boundary")
	}
	return b.String()
}
