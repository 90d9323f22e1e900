package extract

import (
	"encoding/xml"
	"os"
	"path/filepath"

	aerrors "git.home.luguber.info/inful/autodocs/internal/errors"
)

// IndexFileName is the generator's structured compound index.
const IndexFileName = "index.xml"

// DefaultSymbolKinds selects classes and structs.
var DefaultSymbolKinds = []string{"class", "struct"}

// Symbol is one named compound from the index.
type Symbol struct {
	Name  string
	Kind  string
	RefID string
}

type doxygenIndex struct {
	Compounds []struct {
		RefID string `xml:"refid,attr"`
		Kind  string `xml:"kind,attr"`
		Name  string `xml:"name"`
	} `xml:"compound"`
}

// Symbols parses index.xml in xmlDir and returns the compounds whose kind is in kinds
// (DefaultSymbolKinds when empty), in document order.
func Symbols(xmlDir string, kinds []string) ([]Symbol, error) {
	if len(kinds) == 0 {
		kinds = DefaultSymbolKinds
	}
	want := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}

	path := filepath.Join(xmlDir, IndexFileName)
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, aerrors.ExtractionFailed(path, err)
	}
	var idx doxygenIndex
	if err := xml.Unmarshal(data, &idx); err != nil {
		return nil, aerrors.ExtractionFailed(path, err)
	}

	var out []Symbol
	for _, c := range idx.Compounds {
		if want[c.Kind] {
			out = append(out, Symbol{Name: c.Name, Kind: c.Kind, RefID: c.RefID})
		}
	}
	return out, nil
}

// Names returns the symbol names in order.
func Names(symbols []Symbol) []string {
	names := make([]string, 0, len(symbols))
	for _, s := range symbols {
		names = append(names, s.Name)
	}
	return names
}
