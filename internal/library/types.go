package library

// SourceConfig describes one library root to scan.
type SourceConfig struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`

	// MetadataLanguage is the preferred metadata language for items in
	// this source when their NFO does not carry one.
	MetadataLanguage string `json:"metadata_language,omitempty"`
}

// Source is the scan-time summary of a configured root.
type Source struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	ItemCount int    `json:"item_count"`
}
