// Package build runs the single-file pipeline: resolve assets, bundle entry
// modules, encode binaries, compose the globals script, patch the template
// and write the document.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/drigo-app/drigo-single/internal/assets"
	"github.com/drigo-app/drigo-single/internal/bundler"
	"github.com/drigo-app/drigo-single/internal/checksum"
	"github.com/drigo-app/drigo-single/internal/html"
	"github.com/drigo-app/drigo-single/internal/project"
)

// ModuleReport describes one bundled entry module.
type ModuleReport struct {
	Global string
	Asset  string
	Entry  string
	Inputs int
	Size   int
}

// AssetReport describes one asset embedded as a data URL.
type AssetReport struct {
	Asset       string
	Path        string // Empty for an absent optional asset
	MIME        string
	Size        int64
	EncodedSize int
	Checksum    string
}

// Result summarizes a successful build.
type Result struct {
	OutputPath string
	Size       int64
	Checksum   string
	Modules    []ModuleReport
	Assets     []AssetReport
}

// Run builds the single-file document for p. Any failure aborts the build
// before the output file is touched.
func Run(ctx context.Context, p *project.Project) (*Result, error) {
	log.Debug().Str("root", p.Path).Msg("Resolving assets")
	resolved, err := assets.Resolve(p)
	if err != nil {
		return nil, err
	}

	tmplPath := p.TemplatePath()
	tmpl, err := os.ReadFile(tmplPath)
	if err != nil {
		return nil, &IOError{Op: "reading template", Path: tmplPath, Err: err}
	}

	modules, moduleReports, err := bundleModules(ctx, p, resolved)
	if err != nil {
		return nil, err
	}

	enc := newEncoder(p, resolved)
	globals := make([]html.Global, 0, len(p.Globals))
	for _, g := range p.Globals {
		if g.Module != "" {
			globals = append(globals, html.Global{Name: g.Name, Value: modules[g.Name]})
			continue
		}
		desc, err := enc.descriptor(g.Variants)
		if err != nil {
			return nil, err
		}
		globals = append(globals, html.Global{Name: g.Name, Value: desc})
	}

	script, err := html.ComposeInlineScript(globals)
	if err != nil {
		return nil, fmt.Errorf("composing inline script: %w", err)
	}

	doc, err := html.PatchTemplate(string(tmpl), script)
	if err != nil {
		return nil, fmt.Errorf("patching %s: %w", filepath.Base(tmplPath), err)
	}

	size := int64(len(doc))
	if p.Size.MaxBytes > 0 && size > p.Size.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrOutputTooLarge, size, p.Size.MaxBytes)
	}
	if p.Size.WarnBytes > 0 && size > p.Size.WarnBytes {
		log.Warn().
			Int64("bytes", size).
			Int64("warn_bytes", p.Size.WarnBytes).
			Msg("Output is large; browsers may be slow to parse it")
	}

	if err := WriteOutput(p.OutputDirPath(), p.OutputFile, []byte(doc)); err != nil {
		return nil, err
	}

	return &Result{
		OutputPath: p.OutputPath(),
		Size:       size,
		Checksum:   checksum.Bytes([]byte(doc)),
		Modules:    moduleReports,
		Assets:     enc.reports,
	}, nil
}

// bundleModules bundles every module global concurrently. The bundles share
// no state; the first failure cancels the rest.
func bundleModules(ctx context.Context, p *project.Project, resolved assets.Resolved) (map[string]string, []ModuleReport, error) {
	b, err := bundler.New(p.Path)
	if err != nil {
		return nil, nil, err
	}

	var targets []project.Global
	for _, g := range p.Globals {
		if g.Module != "" {
			targets = append(targets, g)
		}
	}

	results := make([]*bundler.Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		entry, _ := resolved.Path(target.Module)
		g.Go(func() error {
			res, err := b.Bundle(gctx, entry)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	modules := make(map[string]string, len(targets))
	reports := make([]ModuleReport, len(targets))
	for i, target := range targets {
		entry, _ := resolved.Path(target.Module)
		modules[target.Name] = results[i].Code
		reports[i] = ModuleReport{
			Global: target.Name,
			Asset:  target.Module,
			Entry:  entry,
			Inputs: len(results[i].Inputs),
			Size:   len(results[i].Code),
		}
	}
	return modules, reports, nil
}

// encoder turns assets into data URLs, reading each file once.
type encoder struct {
	p        *project.Project
	resolved assets.Resolved
	cache    map[string]string
	reports  []AssetReport
}

func newEncoder(p *project.Project, resolved assets.Resolved) *encoder {
	return &encoder{p: p, resolved: resolved, cache: make(map[string]string)}
}

func (e *encoder) descriptor(variants []project.Variant) (html.Descriptor, error) {
	desc := make(html.Descriptor, 0, len(variants))
	for _, v := range variants {
		mainModule, err := e.encode(v.MainModule)
		if err != nil {
			return nil, err
		}
		mainWorker, err := e.encode(v.MainWorker)
		if err != nil {
			return nil, err
		}
		slots := html.Slots{MainModule: mainModule, MainWorker: mainWorker}
		if v.PthreadWorker != "" {
			if _, ok := e.resolved.Path(v.PthreadWorker); ok {
				pthread, err := e.encode(v.PthreadWorker)
				if err != nil {
					return nil, err
				}
				slots.PthreadWorker = &pthread
			} else {
				e.absent(v.PthreadWorker)
			}
		}
		desc = append(desc, html.Variant{Name: v.Name, Slots: slots})
	}
	return desc, nil
}

func (e *encoder) encode(name string) (string, error) {
	if url, ok := e.cache[name]; ok {
		return url, nil
	}

	path, ok := e.resolved.Path(name)
	if !ok {
		return "", fmt.Errorf("asset %s was not resolved", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &IOError{Op: "reading", Path: path, Err: err}
	}

	a, _ := e.p.Asset(name)
	mime := a.MIMEType(path)
	url := html.EncodeDataURL(data, mime)
	e.cache[name] = url
	e.reports = append(e.reports, AssetReport{
		Asset:       name,
		Path:        path,
		MIME:        mime,
		Size:        int64(len(data)),
		EncodedSize: len(url),
		Checksum:    checksum.Bytes(data),
	})
	log.Debug().Str("asset", name).Int("bytes", len(data)).Str("mime", mime).Msg("Encoded asset")
	return url, nil
}

func (e *encoder) absent(name string) {
	if _, ok := e.cache[name]; ok {
		return
	}
	e.cache[name] = ""
	e.reports = append(e.reports, AssetReport{Asset: name})
}
