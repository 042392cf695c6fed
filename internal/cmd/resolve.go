package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/drigo-app/drigo-single/internal/assets"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show which files will be embedded",
	Long: `Resolve checks that the DuckDB-WASM and Fireproof packages are installed and
prints the file each configured asset resolves to, without building anything.`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	resolved, err := assets.Resolve(p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project: %s\n\n", p.Path)
	for _, a := range p.Assets {
		path, ok := resolved.Path(a.Name)
		if !ok {
			fmt.Fprintf(out, "  %-20s %s\n", a.Name, yellow("(optional, absent)"))
			continue
		}
		size := "?"
		if info, err := os.Stat(path); err == nil {
			size = formatSize(info.Size())
		}
		fmt.Fprintf(out, "  %-20s %s (%s)\n", a.Name, relPath(p.Path, path), size)
	}
	return nil
}
