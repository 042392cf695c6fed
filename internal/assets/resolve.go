// Package assets locates pre-built browser artifacts inside installed
// dependencies' distribution directories.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/drigo-app/drigo-single/internal/project"
)

// Resolved maps asset names to absolute file paths.
// An optional asset that matched nothing maps to "".
type Resolved map[string]string

// Path returns the resolved path of an asset and whether one was found.
func (r Resolved) Path(name string) (string, bool) {
	path := r[name]
	return path, path != ""
}

// CheckDependencies verifies that every dependency's distribution directory exists.
func CheckDependencies(p *project.Project) error {
	for _, d := range p.Dependencies {
		dir := p.DistPath(d)
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			pkg := d.Package
			if pkg == "" {
				pkg = d.Name
			}
			return &MissingDependencyError{Package: pkg, Dir: dir, Install: d.Install}
		}
	}
	return nil
}

// Resolve checks the dependencies and then locates every configured asset.
// A required asset that matches nothing fails the whole resolution.
func Resolve(p *project.Project) (Resolved, error) {
	if err := CheckDependencies(p); err != nil {
		return nil, err
	}

	listings := make(map[string][]os.DirEntry)
	resolved := make(Resolved, len(p.Assets))

	for _, a := range p.Assets {
		dir := p.SearchDir(a)

		entries, ok := listings[dir]
		if !ok {
			var err error
			entries, err = os.ReadDir(dir)
			if err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("listing %s: %w", dir, err)
			}
			listings[dir] = entries
		}

		patterns, err := compile(a.Patterns)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.Name, err)
		}

		name := match(entries, patterns)
		if name == "" {
			if !a.Optional {
				return nil, &MissingAssetError{Asset: a.Name, Dir: dir, Patterns: a.Patterns}
			}
			log.Debug().Str("asset", a.Name).Str("dir", dir).Msg("Optional asset absent")
			resolved[a.Name] = ""
			continue
		}

		path, err := filepath.Abs(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", name, err)
		}
		log.Debug().Str("asset", a.Name).Str("path", path).Msg("Resolved asset")
		resolved[a.Name] = path
	}

	return resolved, nil
}

// match applies patterns in order; within a pattern, entries are scanned in
// directory order (lexical, from os.ReadDir). Directories never match.
func match(entries []os.DirEntry, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if re.MatchString(e.Name()) {
				return e.Name()
			}
		}
	}
	return ""
}

func compile(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
