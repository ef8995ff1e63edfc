package library

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/MimeLyc/artwork-curator/internal/media"
)

// nfoDocument is the subset of a Kodi/Jellyfin NFO file the curator
// cares about. The same shape covers movie.nfo, tvshow.nfo and
// season.nfo; absent elements simply stay empty.
type nfoDocument struct {
	Title         string   `xml:"title"`
	OriginalTitle string   `xml:"originaltitle"`
	Studios       []string `xml:"studio"`
	Tags          []string `xml:"tag"`
	Genres        []string `xml:"genre"`
	Countries     []string `xml:"country"`
	Language      string   `xml:"language"`
	UniqueIDs     []struct {
		Type  string `xml:"type,attr"`
		Value string `xml:",chardata"`
	} `xml:"uniqueid"`
	// Legacy id fields used by older scrapers.
	TMDBID string `xml:"tmdbid"`
	IMDBID string `xml:"imdbid"`
}

func readNFO(path string) (*nfoDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read nfo: %w", err)
	}

	var doc nfoDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse nfo %s: %w", path, err)
	}
	return &doc, nil
}

// itemFromNFO builds a metadata view from a parsed NFO. Fallback values
// fill fields the NFO leaves empty.
func itemFromNFO(doc *nfoDocument, kind media.ItemKind, fallbackName, path, nfoPath, metadataLanguage string) media.Item {
	item := media.Item{
		Name:          strings.TrimSpace(doc.Title),
		Kind:          kind,
		OriginalTitle: strings.TrimSpace(doc.OriginalTitle),
		Path:          path,
		NFOPath:       nfoPath,
	}
	if item.Name == "" {
		item.Name = fallbackName
	}

	item.Studios = trimAll(doc.Studios)
	item.Tags = trimAll(doc.Tags)
	item.Genres = trimAll(doc.Genres)
	item.ProductionLocations = trimAll(doc.Countries)

	item.PreferredMetadataLanguage = strings.TrimSpace(doc.Language)
	if item.PreferredMetadataLanguage == "" {
		item.PreferredMetadataLanguage = metadataLanguage
	}

	for _, id := range doc.UniqueIDs {
		value := strings.TrimSpace(id.Value)
		if value == "" {
			continue
		}
		switch strings.ToLower(id.Type) {
		case "tmdb":
			item.IDs.TMDB = value
		case "tvdb":
			item.IDs.TVDB = value
		case "imdb":
			item.IDs.IMDB = value
		}
	}
	if item.IDs.TMDB == "" {
		item.IDs.TMDB = strings.TrimSpace(doc.TMDBID)
	}
	if item.IDs.IMDB == "" {
		item.IDs.IMDB = strings.TrimSpace(doc.IMDBID)
	}

	return item
}

func trimAll(values []string) []string {
	ret := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			ret = append(ret, trimmed)
		}
	}
	if len(ret) == 0 {
		return nil
	}
	return ret
}
