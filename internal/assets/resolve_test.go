package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drigo-app/drigo-single/internal/project"
	"github.com/drigo-app/drigo-single/internal/testutil"
)

func TestResolveDefault(t *testing.T) {
	f := testutil.NewProject(t, testutil.FixtureConfig{})
	p := project.Default(f.Dir)

	resolved, err := Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	expected := map[string]string{
		"duckdb-module":    filepath.Join(f.DuckDBDist, testutil.DuckDBModule),
		"wasm-mvp":         filepath.Join(f.DuckDBDist, testutil.WASMMVP),
		"wasm-eh":          filepath.Join(f.DuckDBDist, testutil.WASMEH),
		"worker-mvp":       filepath.Join(f.DuckDBDist, testutil.WorkerMVP),
		"worker-eh":        filepath.Join(f.DuckDBDist, testutil.WorkerEH),
		"pthread-worker":   filepath.Join(f.DuckDBDist, testutil.PthreadWorker),
		"fireproof-module": filepath.Join(f.FireproofSrc, "fireproof.mjs"),
	}
	for name, want := range expected {
		got, ok := resolved.Path(name)
		if !ok {
			t.Errorf("%s: not resolved", name)
			continue
		}
		if got != want {
			t.Errorf("%s: got %s, want %s", name, got, want)
		}
	}
}

func TestResolveOptionalAbsent(t *testing.T) {
	f := testutil.NewProject(t, testutil.FixtureConfig{SkipPthread: true})

	resolved, err := Resolve(project.Default(f.Dir))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	path, ok := resolved.Path("pthread-worker")
	if ok || path != "" {
		t.Errorf("pthread-worker: got %q, want absent", path)
	}
	if _, present := resolved["pthread-worker"]; !present {
		t.Error("absent optional asset should still have an entry")
	}
}

func TestResolveMissingDependency(t *testing.T) {
	tests := []struct {
		name string
		cfg  testutil.FixtureConfig
		pkg  string
	}{
		{"duckdb", testutil.FixtureConfig{SkipDuckDB: true}, "@duckdb/duckdb-wasm"},
		{"fireproof", testutil.FixtureConfig{SkipFireproof: true}, "@fireproof/core"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewProject(t, tt.cfg)

			_, err := Resolve(project.Default(f.Dir))
			if !errors.Is(err, ErrMissingDependency) {
				t.Fatalf("expected ErrMissingDependency, got %v", err)
			}

			var depErr *MissingDependencyError
			if !errors.As(err, &depErr) {
				t.Fatalf("expected *MissingDependencyError, got %T", err)
			}
			if depErr.Package != tt.pkg {
				t.Errorf("package: got %q, want %q", depErr.Package, tt.pkg)
			}
			if !strings.Contains(err.Error(), "npm install") {
				t.Errorf("error should name the remedial command: %v", err)
			}
		})
	}
}

func TestResolveMissingAsset(t *testing.T) {
	f := testutil.NewProject(t, testutil.FixtureConfig{Skip: []string{testutil.WASMEH}})

	_, err := Resolve(project.Default(f.Dir))
	if !errors.Is(err, ErrMissingAsset) {
		t.Fatalf("expected ErrMissingAsset, got %v", err)
	}

	var assetErr *MissingAssetError
	if !errors.As(err, &assetErr) {
		t.Fatalf("expected *MissingAssetError, got %T", err)
	}
	if assetErr.Asset != "wasm-eh" {
		t.Errorf("asset: got %q, want wasm-eh", assetErr.Asset)
	}
	if assetErr.Dir != f.DuckDBDist {
		t.Errorf("dir: got %q, want %q", assetErr.Dir, f.DuckDBDist)
	}
}

func TestResolveMissingSearchDir(t *testing.T) {
	f := testutil.NewProject(t, testutil.FixtureConfig{})
	if err := os.RemoveAll(f.FireproofSrc); err != nil {
		t.Fatal(err)
	}

	_, err := Resolve(project.Default(f.Dir))
	var assetErr *MissingAssetError
	if !errors.As(err, &assetErr) || assetErr.Asset != "fireproof-module" {
		t.Fatalf("expected missing fireproof-module, got %v", err)
	}
}

func TestPatternOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a-legacy.js", "b-modern.js", "c-modern.js", "modern.js"} {
		testutil.WriteFile(t, filepath.Join(dir, "dist", name), []byte("x"))
	}
	if err := os.MkdirAll(filepath.Join(dir, "dist", "0-modern.js"), 0755); err != nil {
		t.Fatal(err)
	}

	p := &project.Project{
		Path:         dir,
		Dependencies: []project.Dependency{{Name: "lib", Dist: "dist"}},
		Assets: []project.Asset{
			// Pattern order wins over directory order
			{Name: "first", Dependency: "lib", Patterns: []string{`modern\.js$`, `legacy\.js$`}},
			{Name: "fallback", Dependency: "lib", Patterns: []string{`missing\.js$`, `legacy\.js$`}},
			{Name: "none", Dependency: "lib", Patterns: []string{`missing\.js$`}, Optional: true},
		},
	}

	resolved, err := Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	tests := []struct {
		asset    string
		expected string
	}{
		{"first", "b-modern.js"},
		{"fallback", "a-legacy.js"},
		{"none", ""},
	}
	for _, tt := range tests {
		got := resolved[tt.asset]
		if tt.expected == "" {
			if got != "" {
				t.Errorf("%s: got %q, want absent", tt.asset, got)
			}
			continue
		}
		if filepath.Base(got) != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.asset, filepath.Base(got), tt.expected)
		}
	}
}
