package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drigo-app/drigo-single/internal/build"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check dist/index.html against the current sources",
	Long: `Verify reads the built document and checks every embedded global:

  - each entry module is bundled again and compared with the inlined code
  - each data URL is decoded and compared with the file it came from

Use it to detect a stale build after upgrading @duckdb/duckdb-wasm or
@fireproof/core.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	checks, err := build.Verify(ctx, p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, c := range checks {
		fmt.Fprintf(out, "Checking %s... ", c.Name)
		switch c.Status {
		case build.StatusOK:
			fmt.Fprintln(out, green("OK"))
		case build.StatusMissing:
			fmt.Fprintln(out, red("MISSING"))
		default:
			fmt.Fprintln(out, red("CHECKSUM MISMATCH"))
			fmt.Fprintf(out, "  Expected: %s\n", c.Expected)
			fmt.Fprintf(out, "  Got:      %s\n", c.Got)
		}
	}

	fmt.Fprintln(out)
	if build.Passed(checks) {
		fmt.Fprintln(out, "All embedded assets verified.")
		return nil
	}
	return fmt.Errorf("verification failed; run 'drigo-single build' to refresh %s", relPath(p.Path, p.OutputPath()))
}
