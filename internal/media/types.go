package media

// ItemKind classifies a library entry.
type ItemKind string

const (
	KindMovie  ItemKind = "movie"
	KindSeries ItemKind = "series"
	KindSeason ItemKind = "season"
	KindOther  ItemKind = "other"
)

// Item is a read-only metadata view of a library entry, assembled by the
// library scanner (or handed in over the API). All fields are snapshots;
// nothing in the selection pipeline mutates them.
type Item struct {
	Name                string   `json:"name"`
	Kind                ItemKind `json:"kind"`
	Studios             []string `json:"studios,omitempty"`
	Tags                []string `json:"tags,omitempty"`
	Genres              []string `json:"genres,omitempty"`
	ProductionLocations []string `json:"production_locations,omitempty"`
	OriginalTitle       string   `json:"original_title,omitempty"`

	// PreferredMetadataLanguage is the host-resolved metadata language
	// setting. Empty means "use the service default".
	PreferredMetadataLanguage string `json:"preferred_metadata_language,omitempty"`

	// Parent links a Season back to its Series. Nil for everything else.
	Parent *Item `json:"parent,omitempty"`

	// Host-integration fields, unused by the decision engine.
	Path    string      `json:"path,omitempty"`
	NFOPath string      `json:"nfo_path,omitempty"`
	IDs     ExternalIDs `json:"ids,omitempty"`
}

// ImageType is one of the artwork slots the curator fills.
type ImageType string

const (
	ImagePrimary  ImageType = "primary"
	ImageLogo     ImageType = "logo"
	ImageThumb    ImageType = "thumb"
	ImageBackdrop ImageType = "backdrop"
)

// ImageTypes returns the supported artwork slots in canonical order.
func ImageTypes() []ImageType {
	return []ImageType{ImagePrimary, ImageLogo, ImageThumb, ImageBackdrop}
}

// Image is one candidate returned by an upstream provider. Absent numeric
// fields are zero; Language may be empty or free-form upstream text.
type Image struct {
	Type      ImageType `json:"type"`
	Language  string    `json:"language,omitempty"`
	VoteCount int       `json:"vote_count,omitempty"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`

	// Collaborator fields, ignored by ranking.
	URL      string `json:"url,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// ExternalIDs carries upstream database identifiers parsed from NFO
// uniqueid elements.
type ExternalIDs struct {
	TMDB string `json:"tmdb,omitempty"`
	TVDB string `json:"tvdb,omitempty"`
	IMDB string `json:"imdb,omitempty"`
}
