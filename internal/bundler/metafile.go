package bundler

// Metafile is the subset of esbuild's metafile JSON the bundler reads.
// Input entries are only used for their keys.
type Metafile struct {
	Inputs  map[string]struct{}       `json:"inputs"`
	Outputs map[string]MetafileOutput `json:"outputs"`
}

// MetafileOutput represents an output file in the metafile
type MetafileOutput struct {
	Exports []string `json:"exports"`
}
