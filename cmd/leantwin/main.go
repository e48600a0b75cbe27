package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plantworks/leantwin/cmd/leantwin/commands"
	"github.com/plantworks/leantwin/logger"
)

var rootCmd = &cobra.Command{
	Use:   "leantwin",
	Short: "leantwin - Plant equipment digital twin server",
	Long: `leantwin - Digital twin browser for plant equipment.

leantwin connects a SPARQL repository of plant equipment to a local
web UI: browse the semantic graph, organize equipment in a plant
hierarchy, tag nodes, and fill spreadsheet datasheets with live
property values.

Available commands:
  serve    - Start the local server
  config   - Show and change configuration
  project  - Export or import the project archive
  version  - Show version information

Examples:
  leantwin serve                 # Start the server on the default port
  leantwin serve -v --port 9000  # Verbose, custom port
  leantwin config show           # Show the effective configuration
  leantwin project export p.zip  # Package the project`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.Initialize(false, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v",
		"Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.ProjectCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
