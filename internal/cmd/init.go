package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/drigo-app/drigo-single/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write singlefile.yml with the default configuration",
	Long: `Init writes singlefile.yml into the project directory (--dir, or the current
directory). The file holds the built-in configuration: template and output
paths, the npm packages to read from, the asset patterns and the globals.

Edit it when a package changes its dist layout. Without the file the
built-in configuration is used as is.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := rootDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if err := project.Default(abs).WriteConfig(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("Created"), filepath.Join(abs, project.ProjectFileName))
	return nil
}
