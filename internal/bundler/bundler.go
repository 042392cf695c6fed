// Package bundler turns a JavaScript module entry point into one
// self-contained ES module using esbuild's Go API.
package bundler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

// ErrBundle matches any *BundleError.
var ErrBundle = errors.New("bundle failed")

// BundleError carries every diagnostic esbuild reported for one entry point.
type BundleError struct {
	Entry    string
	Messages []string
}

func (e *BundleError) Error() string {
	return fmt.Sprintf("bundling %s: %s", e.Entry, strings.Join(e.Messages, "; "))
}

func (e *BundleError) Is(target error) bool { return target == ErrBundle }

// Bundler bundles entry modules for the browser, in memory.
type Bundler struct {
	workDir string
}

// Result is the output of one bundle operation.
type Result struct {
	Code     string
	Inputs   []string // Source files inlined into Code, relative to the working directory
	Exports  []string
	Warnings []string
}

// New creates a bundler. workDir anchors module resolution and the source
// paths esbuild writes into comments, so output is stable for a given root.
func New(workDir string) (*Bundler, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return &Bundler{workDir: abs}, nil
}

// Bundle resolves and inlines every static import of entryPath into a single
// ESM text blob. Nothing is written to disk. Cancelling ctx cancels the build.
func (b *Bundler) Bundle(ctx context.Context, entryPath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bundling %s: %w", entryPath, err)
	}

	bctx, ctxErr := api.Context(api.BuildOptions{
		EntryPoints:   []string{entryPath},
		Bundle:        true,
		Write:         false,
		Metafile:      true,
		Format:        api.FormatESModule,
		Platform:      api.PlatformBrowser,
		Target:        api.ESNext,
		Charset:       api.CharsetUTF8,
		LogLevel:      api.LogLevelSilent,
		AbsWorkingDir: b.workDir,
	})
	if ctxErr != nil {
		return nil, &BundleError{Entry: entryPath, Messages: formatMessages(ctxErr.Errors)}
	}
	defer bctx.Dispose()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			bctx.Cancel()
		case <-done:
		}
	}()

	result := bctx.Rebuild()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bundling %s: %w", entryPath, err)
	}

	if len(result.Errors) > 0 {
		return nil, &BundleError{Entry: entryPath, Messages: formatMessages(result.Errors)}
	}
	if len(result.OutputFiles) != 1 {
		return nil, &BundleError{
			Entry:    entryPath,
			Messages: []string{fmt.Sprintf("expected 1 output file, got %d", len(result.OutputFiles))},
		}
	}

	out := &Result{
		Code:     string(result.OutputFiles[0].Contents),
		Warnings: formatMessages(result.Warnings),
	}

	var meta Metafile
	if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
		return nil, fmt.Errorf("parsing metafile: %w", err)
	}
	for input := range meta.Inputs {
		out.Inputs = append(out.Inputs, input)
	}
	sort.Strings(out.Inputs)
	for _, o := range meta.Outputs {
		out.Exports = append(out.Exports, o.Exports...)
	}

	for _, w := range out.Warnings {
		log.Warn().Str("entry", entryPath).Msg(w)
	}
	log.Debug().
		Str("entry", entryPath).
		Int("inputs", len(out.Inputs)).
		Int("bytes", len(out.Code)).
		Msg("Bundled module")

	return out, nil
}

// formatMessages renders esbuild messages as "file:line:col: text".
func formatMessages(msgs []api.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location != nil {
			out = append(out, fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text))
			continue
		}
		out = append(out, m.Text)
	}
	return out
}
