package project

// Names of the globals the application reads before its module runs.
const (
	GlobalDuckDBModule    = "__DRIGO_DUCKDB_MODULE__"
	GlobalDuckDBBundles   = "__DRIGO_DUCKDB_BUNDLES__"
	GlobalFireproofModule = "__DRIGO_FIREPROOF_MODULE__"
)

// Default returns the built-in configuration: DuckDB-WASM and Fireproof
// from node_modules, index.html in, dist/index.html out.
func Default(dir string) *Project {
	p := &Project{
		Template:   DefaultTemplate,
		OutputDir:  DefaultOutputDir,
		OutputFile: DefaultOutputFile,
		Dependencies: []Dependency{
			{
				Name:    "duckdb",
				Package: "@duckdb/duckdb-wasm",
				Dist:    "node_modules/@duckdb/duckdb-wasm/dist",
				Install: "npm install",
			},
			{
				Name:    "fireproof",
				Package: "@fireproof/core",
				Dist:    "node_modules/@fireproof/core/dist",
				Install: "npm install",
			},
		},
		Assets: []Asset{
			{Name: "duckdb-module", Dependency: "duckdb", Patterns: []string{`duckdb-browser\.mjs$`}},
			{Name: "wasm-mvp", Dependency: "duckdb", Patterns: []string{`duckdb-mvp\.wasm$`}},
			{Name: "wasm-eh", Dependency: "duckdb", Patterns: []string{`duckdb-eh\.wasm$`}},
			{Name: "worker-mvp", Dependency: "duckdb", Patterns: []string{`duckdb-browser-mvp\.worker\.js$`}},
			{Name: "worker-eh", Dependency: "duckdb", Patterns: []string{`duckdb-browser-eh\.worker\.js$`}},
			{Name: "pthread-worker", Dependency: "duckdb", Patterns: []string{`pthread.*worker\.js$`}, Optional: true},
			{Name: "fireproof-module", Dependency: "fireproof", Subdir: "src", Patterns: []string{`fireproof\.mjs$`}},
		},
		Globals: []Global{
			{Name: GlobalDuckDBModule, Module: "duckdb-module"},
			{Name: GlobalDuckDBBundles, Variants: []Variant{
				{Name: "mvp", MainModule: "wasm-mvp", MainWorker: "worker-mvp"},
				{Name: "eh", MainModule: "wasm-eh", MainWorker: "worker-eh", PthreadWorker: "pthread-worker"},
			}},
			{Name: GlobalFireproofModule, Module: "fireproof-module"},
		},
		Size: SizePolicy{WarnBytes: DefaultWarnBytes},
		Path: dir,
	}
	return p
}
