package project

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ProjectFileName   = "singlefile.yml"
	DefaultTemplate   = "index.html"
	DefaultOutputDir  = "dist"
	DefaultOutputFile = "index.html"

	// DefaultWarnBytes is the output size above which the build logs a warning.
	DefaultWarnBytes = 64 << 20 // 64 MiB
)

// Dependency is an installed package whose distribution directory holds
// pre-built browser artifacts.
type Dependency struct {
	Name    string `yaml:"name"`
	Package string `yaml:"package"`
	Dist    string `yaml:"dist"`              // Relative to the project root
	Install string `yaml:"install,omitempty"` // Remedial command shown when Dist is missing
}

// Asset locates one file inside a dependency's distribution directory.
// Patterns are tried in order; the first directory entry matching a pattern wins.
type Asset struct {
	Name       string   `yaml:"name"`
	Dependency string   `yaml:"dependency"`
	Subdir     string   `yaml:"subdir,omitempty"`
	Patterns   []string `yaml:"patterns"`
	Optional   bool     `yaml:"optional,omitempty"`
	MIME       string   `yaml:"mime,omitempty"` // Derived from the file extension when empty
}

// Variant names the assets for one build variant of a bundle descriptor.
// PthreadWorker may be empty or name an optional asset.
type Variant struct {
	Name          string `yaml:"name"`
	MainModule    string `yaml:"main_module"`
	MainWorker    string `yaml:"main_worker"`
	PthreadWorker string `yaml:"pthread_worker,omitempty"`
}

// Global is one page-global value injected before the application module.
// Exactly one of Module (bundled ESM text of an asset) or Variants
// (a bundle descriptor) is set.
type Global struct {
	Name     string    `yaml:"name"`
	Module   string    `yaml:"module,omitempty"`
	Variants []Variant `yaml:"variants,omitempty"`
}

// SizePolicy bounds the size of the generated document.
type SizePolicy struct {
	WarnBytes int64 `yaml:"warn_bytes,omitempty"`
	MaxBytes  int64 `yaml:"max_bytes,omitempty"` // 0 means unlimited
}

// Project represents a single-file build configuration.
type Project struct {
	Template     string       `yaml:"template"`
	OutputDir    string       `yaml:"output_dir"`
	OutputFile   string       `yaml:"output_file"`
	Dependencies []Dependency `yaml:"dependencies"`
	Assets       []Asset      `yaml:"assets"`
	Globals      []Global     `yaml:"globals"`
	Size         SizePolicy   `yaml:"size,omitempty"`

	// Path is the project root (not serialized)
	Path string `yaml:"-"`
}

var jsIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Load reads a project from a directory.
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing project file: %w", err)
	}

	p.Path = dir
	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ProjectFileName, err)
	}
	return &p, nil
}

// LoadOrDefault loads singlefile.yml from dir if present, otherwise returns
// the built-in configuration rooted at dir.
func LoadOrDefault(dir string) (*Project, error) {
	if _, err := os.Stat(filepath.Join(dir, ProjectFileName)); err != nil {
		if os.IsNotExist(err) {
			return Default(dir), nil
		}
		return nil, fmt.Errorf("checking project file: %w", err)
	}
	return Load(dir)
}

func (p *Project) applyDefaults() {
	if p.Template == "" {
		p.Template = DefaultTemplate
	}
	if p.OutputDir == "" {
		p.OutputDir = DefaultOutputDir
	}
	if p.OutputFile == "" {
		p.OutputFile = DefaultOutputFile
	}
	if p.Size.WarnBytes == 0 {
		p.Size.WarnBytes = DefaultWarnBytes
	}
}

// Validate checks that the project configuration is consistent.
func (p *Project) Validate() error {
	if p.Template == "" {
		return fmt.Errorf("template is required")
	}
	if p.OutputFile == "" || strings.ContainsAny(p.OutputFile, `/\`) {
		return fmt.Errorf("output_file must be a plain file name, got %q", p.OutputFile)
	}
	if p.Size.MaxBytes < 0 || p.Size.WarnBytes < 0 {
		return fmt.Errorf("size limits cannot be negative")
	}

	deps := make(map[string]bool, len(p.Dependencies))
	for i, d := range p.Dependencies {
		if d.Name == "" {
			return fmt.Errorf("dependency %d: name is required", i+1)
		}
		if d.Dist == "" {
			return fmt.Errorf("dependency %s: dist is required", d.Name)
		}
		if deps[d.Name] {
			return fmt.Errorf("dependency %s: defined twice", d.Name)
		}
		deps[d.Name] = true
	}

	assets := make(map[string]Asset, len(p.Assets))
	for i, a := range p.Assets {
		if a.Name == "" {
			return fmt.Errorf("asset %d: name is required", i+1)
		}
		if _, dup := assets[a.Name]; dup {
			return fmt.Errorf("asset %s: defined twice", a.Name)
		}
		if !deps[a.Dependency] {
			return fmt.Errorf("asset %s: unknown dependency %q", a.Name, a.Dependency)
		}
		if len(a.Patterns) == 0 {
			return fmt.Errorf("asset %s: at least one pattern is required", a.Name)
		}
		for _, pat := range a.Patterns {
			if _, err := regexp.Compile(pat); err != nil {
				return fmt.Errorf("asset %s: bad pattern %q: %w", a.Name, pat, err)
			}
		}
		assets[a.Name] = a
	}

	required := func(global, slot, name string) error {
		a, ok := assets[name]
		if !ok {
			return fmt.Errorf("global %s: %s refers to unknown asset %q", global, slot, name)
		}
		if a.Optional {
			return fmt.Errorf("global %s: %s asset %q cannot be optional", global, slot, name)
		}
		return nil
	}

	globals := make(map[string]bool, len(p.Globals))
	for i, g := range p.Globals {
		if !jsIdentifier.MatchString(g.Name) {
			return fmt.Errorf("global %d: %q is not a valid identifier", i+1, g.Name)
		}
		if globals[g.Name] {
			return fmt.Errorf("global %s: defined twice", g.Name)
		}
		globals[g.Name] = true

		switch {
		case g.Module != "" && len(g.Variants) > 0:
			return fmt.Errorf("global %s: set either module or variants, not both", g.Name)
		case g.Module != "":
			if err := required(g.Name, "module", g.Module); err != nil {
				return err
			}
		case len(g.Variants) > 0:
			seen := make(map[string]bool, len(g.Variants))
			for _, v := range g.Variants {
				if v.Name == "" || seen[v.Name] {
					return fmt.Errorf("global %s: variant names must be unique and non-empty", g.Name)
				}
				seen[v.Name] = true
				if err := required(g.Name, v.Name+".main_module", v.MainModule); err != nil {
					return err
				}
				if err := required(g.Name, v.Name+".main_worker", v.MainWorker); err != nil {
					return err
				}
				if v.PthreadWorker != "" {
					if _, ok := assets[v.PthreadWorker]; !ok {
						return fmt.Errorf("global %s: %s.pthread_worker refers to unknown asset %q", g.Name, v.Name, v.PthreadWorker)
					}
				}
			}
		default:
			return fmt.Errorf("global %s: module or variants is required", g.Name)
		}
	}

	return nil
}

// Dependency returns the dependency with the given name.
func (p *Project) Dependency(name string) (Dependency, bool) {
	for _, d := range p.Dependencies {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// Asset returns the asset with the given name.
func (p *Project) Asset(name string) (Asset, bool) {
	for _, a := range p.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// DistPath returns the absolute distribution directory of a dependency.
func (p *Project) DistPath(d Dependency) string {
	if filepath.IsAbs(d.Dist) {
		return d.Dist
	}
	return filepath.Join(p.Path, d.Dist)
}

// SearchDir returns the directory an asset is looked up in.
func (p *Project) SearchDir(a Asset) string {
	d, _ := p.Dependency(a.Dependency)
	return filepath.Join(p.DistPath(d), a.Subdir)
}

// TemplatePath returns the path to the HTML template.
func (p *Project) TemplatePath() string {
	if filepath.IsAbs(p.Template) {
		return p.Template
	}
	return filepath.Join(p.Path, p.Template)
}

// OutputDirPath returns the directory the document is written to.
func (p *Project) OutputDirPath() string {
	if filepath.IsAbs(p.OutputDir) {
		return p.OutputDir
	}
	return filepath.Join(p.Path, p.OutputDir)
}

// OutputPath returns the path of the generated document.
func (p *Project) OutputPath() string {
	return filepath.Join(p.OutputDirPath(), p.OutputFile)
}

// MIMEType returns the media type used when the asset at path is embedded.
func (a Asset) MIMEType(path string) string {
	if a.MIME != "" {
		return a.MIME
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wasm":
		return "application/wasm"
	case ".js", ".mjs", ".cjs":
		return "text/javascript"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// FindProjectDir searches up the directory tree for a singlefile.yml file.
// Returns the directory containing the project, or an error if not found.
func FindProjectDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		projectPath := filepath.Join(dir, ProjectFileName)
		if _, err := os.Stat(projectPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("no %s found in %s or any parent directory", ProjectFileName, startDir)
		}
		dir = parent
	}
}
