package blazegraph

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/clearrights/repository/errs"
)

// fixtureContentTypes maps fixture file extensions to payload content
// types. Files with other extensions are skipped.
var fixtureContentTypes = map[string]string{
	".ttl": "application/x-turtle",
	".xml": "application/xml",
	".rdf": "application/xml",
	".nt":  "text/plain",
}

// FixturesFromDir reads the RDF files of a directory as fixtures, in
// lexical order. Use it to load the ontology and the initial assertions
// every namespace starts from.
func FixturesFromDir(dir string) ([]Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Repositoryf("read fixture directory %s: %v", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := fixtureContentTypes[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	fixtures := make([]Fixture, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, errs.Repositoryf("read fixture %s: %v", name, err)
		}
		fixtures = append(fixtures, Fixture{
			Name:        name,
			ContentType: fixtureContentTypes[strings.ToLower(filepath.Ext(name))],
			Data:        data,
		})
	}
	return fixtures, nil
}
