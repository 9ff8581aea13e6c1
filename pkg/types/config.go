package types

// ExtractConfig holds settings for the extraction stage.
type ExtractConfig struct {
	// OutputDir is the directory extracted views are written to.
	// Empty means alongside the source file.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Stdout writes the extracted view to standard output instead of
	// a file.
	Stdout bool `json:"stdout" yaml:"stdout"`
}

// CatalogConfig holds settings for the scope catalog.
type CatalogConfig struct {
	// CatalogDir is the directory holding the catalog database
	// (quill.db) and exports.
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults is the default maximum number of catalog search
	// results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
