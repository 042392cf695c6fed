// Package testutil builds fake project trees for packager tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Template is the default HTML template written by NewProject.
const Template = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>drigo</title>
</head>
<body>
  <div id="app"></div>
  <script type="module">
    import { start } from "./app.js";
    start();
  </script>
</body>
</html>
`

// Fixture describes a fake project rooted at Dir with node_modules laid out
// the way the default configuration expects.
type Fixture struct {
	Dir          string
	DuckDBDist   string
	FireproofSrc string
}

// FixtureConfig controls which files NewProject creates.
type FixtureConfig struct {
	// SkipDuckDB omits node_modules/@duckdb/duckdb-wasm entirely.
	SkipDuckDB bool
	// SkipFireproof omits node_modules/@fireproof/core entirely.
	SkipFireproof bool
	// SkipPthread omits the optional pthread worker.
	SkipPthread bool
	// Skip lists duckdb dist file names that should not be created.
	Skip []string
	// WASMMVP and WASMEH override the WASM binaries' contents.
	WASMMVP []byte
	WASMEH  []byte
	// Template overrides the index.html template.
	Template string
}

// DuckDB dist file names written by NewProject.
const (
	DuckDBModule  = "duckdb-browser.mjs"
	WASMMVP       = "duckdb-mvp.wasm"
	WASMEH        = "duckdb-eh.wasm"
	WorkerMVP     = "duckdb-browser-mvp.worker.js"
	WorkerEH      = "duckdb-browser-eh.worker.js"
	PthreadWorker = "duckdb-browser-coi.pthread.worker.js"
)

// NewProject creates a project tree in a fresh temp directory.
func NewProject(t *testing.T, cfg FixtureConfig) *Fixture {
	t.Helper()

	dir := t.TempDir()
	f := &Fixture{
		Dir:          dir,
		DuckDBDist:   filepath.Join(dir, "node_modules", "@duckdb", "duckdb-wasm", "dist"),
		FireproofSrc: filepath.Join(dir, "node_modules", "@fireproof", "core", "dist", "src"),
	}

	tmpl := cfg.Template
	if tmpl == "" {
		tmpl = Template
	}
	WriteFile(t, filepath.Join(dir, "index.html"), []byte(tmpl))

	if !cfg.SkipDuckDB {
		wasmMVP := cfg.WASMMVP
		if wasmMVP == nil {
			wasmMVP = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
		}
		wasmEH := cfg.WASMEH
		if wasmEH == nil {
			wasmEH = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0xff}
		}

		files := map[string][]byte{
			DuckDBModule:          []byte("import { version } from \"./version.mjs\";\nexport function connect() { return \"duckdb \" + version; }\n"),
			"version.mjs":         []byte("export const version = \"1.0.0\";\n"),
			WASMMVP:               wasmMVP,
			WASMEH:                wasmEH,
			WorkerMVP:             []byte("postMessage(1)"),
			WorkerEH:              []byte("postMessage(2)"),
			"duckdb-node.cjs":     []byte("module.exports = {};\n"),
			"duckdb-mvp.wasm.map": []byte("{}"),
		}
		if !cfg.SkipPthread {
			files[PthreadWorker] = []byte("self.onmessage = () => {};")
		}
		for _, skip := range cfg.Skip {
			delete(files, skip)
		}
		for name, data := range files {
			WriteFile(t, filepath.Join(f.DuckDBDist, name), data)
		}
	}

	if !cfg.SkipFireproof {
		WriteFile(t, filepath.Join(f.FireproofSrc, "fireproof.mjs"),
			[]byte("import { open } from \"./ledger.mjs\";\nexport function fireproof(name) { return open(name); }\n"))
		WriteFile(t, filepath.Join(f.FireproofSrc, "ledger.mjs"),
			[]byte("export function open(name) { return { name, close() {} }; }\n"))
	}

	return f
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

// ReadFile reads path or fails the test.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
