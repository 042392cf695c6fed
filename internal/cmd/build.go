package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/drigo-app/drigo-single/internal/build"
	"github.com/drigo-app/drigo-single/internal/checksum"
	"github.com/drigo-app/drigo-single/internal/project"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the single-file index.html (default command)",
	Long: `Build bundles the Fireproof and DuckDB entry modules, encodes the DuckDB
WASM binaries and workers as data URLs, and inlines everything into a copy of
index.html as window globals placed before the first module script.

The result is written to dist/index.html. Nothing is written if any step
fails. Running drigo-single with no command does the same thing.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var buildReport bool

func init() {
	rootCmd.AddCommand(buildCmd)
	for _, c := range []*cobra.Command{rootCmd, buildCmd} {
		c.Flags().BoolVar(&buildReport, "report", false, "Print what was embedded and how large each piece is")
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	start := time.Now()
	res, err := build.Run(ctx, p)
	if err != nil {
		return err
	}
	log.Debug().Dur("took", time.Since(start)).Str("checksum", res.Checksum).Msg("Build finished")

	out := cmd.OutOrStdout()
	if buildReport {
		printReport(out, p, res)
	}

	rel := relPath(p.Path, res.OutputPath)
	fmt.Fprintf(out, "%s single-file output at %s (%s)\n", green("Built"), rel, formatSize(res.Size))
	return nil
}

func printReport(out io.Writer, p *project.Project, res *build.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "MODULE\tENTRY\tINPUTS\tSIZE")
	for _, m := range res.Modules {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.Global, relPath(p.Path, m.Entry), m.Inputs, formatBytes(int64(m.Size)))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ASSET\tFILE\tSIZE\tENCODED\tCHECKSUM")
	for _, a := range res.Assets {
		if a.Path == "" {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", a.Asset, yellow("(optional, absent)"))
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.Asset, relPath(p.Path, a.Path), formatBytes(a.Size), formatBytes(int64(a.EncodedSize)), checksum.Short(a.Checksum))
	}
	w.Flush()

	fmt.Fprintf(out, "\nOutput: %s, %s\n\n", formatBytes(res.Size), checksum.Short(res.Checksum))
}

// relPath shows path relative to the project root when it lies inside it.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
