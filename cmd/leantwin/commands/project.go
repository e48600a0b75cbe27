package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/plantworks/leantwin/am"
	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/session"
)

// ProjectCmd packages and restores the project directory.
var ProjectCmd = &cobra.Command{
	Use:   "project",
	Short: "Export or import the project archive",
	Long: `Package the project (settings, tag registry, plant hierarchy and the
datasheet library) into a zip archive, or restore it from one.`,
}

var projectExportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export the project to a zip archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectExport,
}

var projectImportCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Replace the project from a zip archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectImport,
}

func init() {
	ProjectCmd.AddCommand(projectExportCmd)
	ProjectCmd.AddCommand(projectImportCmd)
}

func loadSession() (*session.Session, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	return session.New(cfg)
}

func runProjectExport(cmd *cobra.Command, args []string) error {
	sess, err := loadSession()
	if err != nil {
		return err
	}
	if err := sess.ExportArchive(args[0]); err != nil {
		return err
	}
	pterm.Success.Printf("Project exported to %s\n", args[0])
	return nil
}

func runProjectImport(cmd *cobra.Command, args []string) error {
	sess, err := loadSession()
	if err != nil {
		return err
	}
	if err := sess.ImportArchive(args[0]); err != nil {
		return err
	}
	pterm.Success.Printf("Project imported from %s into %s\n", args[0], sess.Dir())
	return nil
}
