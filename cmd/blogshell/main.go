package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/vango-dev/blogshell/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogshell",
		Short: "A single-page blog served with deferred views",
		Long: `blogshell serves a small blog as a single-page application.

Pages are rendered on the server. The blog and post pages are deferred:
their code is built on the first visit while a fallback is shown, and
their loaders fetch posts concurrently with the page. Browsers navigate
over a WebSocket without reloading the document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "", "Configuration file (default ./blogshell.yaml)")

	cmd.AddCommand(
		serveCmd(),
		routesCmd(),
		versionCmd(),
	)
	return cmd
}

// printError prints structured errors with their hints and plain errors as-is.
func printError(err error) {
	var se *apperrors.ShellError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			printError(inner)
		}
		return
	}
	if errors.As(err, &se) {
		fmt.Fprintln(os.Stderr, se.Format())
		return
	}
	fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
}
