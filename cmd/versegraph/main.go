// Command versegraph works with a local graph database: it parses scripture
// references, detects people and places, imports notes and generates and
// prints the laid-out graph.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "versegraph",
		Short: "Study journal graph tools",
		Long: `versegraph turns Bible study notes into a knowledge graph.

Notes are read from a local SQLite database. Every note becomes a node
linked to the passages, books, themes, people and places it mentions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log at debug level")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}
	}

	rootCmd.AddCommand(
		newParseCmd(),
		newEntitiesCmd(),
		newLayoutCmd(),
		newImportNotesCmd(),
		newGenerateCmd(),
		newGraphCmd(),
		newTokenCmd(),
	)
	return rootCmd
}

func jsonOutput(cmd *cobra.Command) bool {
	out, _ := cmd.Flags().GetBool("json")
	return out
}

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	faint   = color.New(color.Faint)
)

func printf(cmd *cobra.Command, c *color.Color, format string, args ...interface{}) {
	if c == nil {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
		return
	}
	c.Fprintf(cmd.OutOrStdout(), format, args...)
}
