package match

import (
	"path"
	"sort"
	"strings"

	"yashubustudio/boqmatch/internal/keywords"
	"yashubustudio/boqmatch/internal/textnorm"
)

// LayerMapping associates layer names (or glob patterns such as "E-LUM*")
// with domain synonyms that should boost a layer when they appear in a
// description.
type LayerMapping map[string][]string

type mappingEntry struct {
	pattern  string
	glob     bool
	synonyms []string
}

// compiledMapping is a LayerMapping with folded keys and synonyms.
type compiledMapping []mappingEntry

func compileMapping(m LayerMapping) compiledMapping {
	out := make(compiledMapping, 0, len(m))
	for pattern, syns := range m {
		key := textnorm.LayerKey(pattern)
		if key == "" {
			continue
		}
		e := mappingEntry{pattern: key, glob: strings.ContainsAny(key, "*?[")}
		for _, s := range syns {
			if f := textnorm.Fold(s); f != "" {
				e.synonyms = append(e.synonyms, f)
			}
		}
		if len(e.synonyms) > 0 {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pattern < out[j].pattern })
	return out
}

// hits counts the synonyms mapped to layerKey that occur in the folded
// description, together with the synonyms found.
func (m compiledMapping) hits(layerKey, text string) (int, []string) {
	n := 0
	var found []string
	for _, e := range m {
		if !e.matches(layerKey) {
			continue
		}
		for _, s := range e.synonyms {
			if keywords.Contains(text, s) {
				n++
				found = append(found, s)
			}
		}
	}
	return n, found
}

func (e mappingEntry) matches(layerKey string) bool {
	if !e.glob {
		return e.pattern == layerKey
	}
	ok, err := path.Match(e.pattern, layerKey)
	return err == nil && ok
}
