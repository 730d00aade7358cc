package classify

import (
	"fmt"
	"sort"
	"strings"

	"yashubustudio/boqmatch/internal/keywords"
	"yashubustudio/boqmatch/internal/textnorm"
)

// Discipline is a construction discipline.
type Discipline string

const (
	Architecture      Discipline = "architecture"
	Structure         Discipline = "structure"
	Electrical        Discipline = "electrical"
	Sanitary          Discipline = "sanitary"
	HVAC              Discipline = "hvac"
	Fire              Discipline = "fire"
	Gas               Discipline = "gas"
	Landscape         Discipline = "landscape"
	UnknownDiscipline Discipline = "unknown"
)

var disciplineOrder = []Discipline{Architecture, Structure, Electrical, Sanitary, HVAC, Fire, Gas, Landscape}

// Discipline evidence sources, in priority order.
const (
	SourceSection     = "section"
	SourceDescription = "description"
	SourceLayers      = "layers"
	SourceNone        = "none"
)

// minLayerShare is the share of known layer disciplines the dominant one
// needs before it is trusted.
const minLayerShare = 0.5

// DisciplineResult is the inferred discipline of a line item.
type DisciplineResult struct {
	Discipline Discipline `json:"discipline"`
	Source     string     `json:"source"`
	Evidence   string     `json:"evidence,omitempty"`
}

type compiledDiscipline struct {
	discipline Discipline
	sections   []string
	rules      keywords.Compiled
}

type layerPrefix struct {
	prefix     string
	discipline Discipline
}

func compileDisciplines(raw map[string]DisciplineRule) ([]compiledDiscipline, []layerPrefix) {
	var (
		out      []compiledDiscipline
		prefixes []layerPrefix
	)
	for _, d := range orderedDisciplines(raw) {
		rule := raw[string(d)]
		cd := compiledDiscipline{discipline: d, rules: keywords.Compile(rule.Keywords)}
		for _, s := range rule.Sections {
			if f := textnorm.Fold(s); f != "" {
				cd.sections = append(cd.sections, f)
			}
		}
		out = append(out, cd)
		for _, p := range rule.LayerPrefixes {
			if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
				prefixes = append(prefixes, layerPrefix{prefix: p, discipline: d})
			}
		}
	}
	sort.SliceStable(prefixes, func(i, j int) bool {
		return len(prefixes[i].prefix) > len(prefixes[j].prefix)
	})
	return out, prefixes
}

// orderedDisciplines lists the known disciplines first, then custom ones by
// name.
func orderedDisciplines(raw map[string]DisciplineRule) []Discipline {
	seen := map[Discipline]bool{}
	var out []Discipline
	for _, d := range disciplineOrder {
		if _, ok := raw[string(d)]; ok {
			out = append(out, d)
			seen[d] = true
		}
	}
	var extra []string
	for name := range raw {
		if !seen[Discipline(name)] && name != "" {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, Discipline(name))
	}
	return out
}

// Discipline infers the discipline of a line item from its section name,
// then its description, then the dominant prefix among layers.
func (c *Classifier) Discipline(section, description string, layers []string) DisciplineResult {
	if sec := textnorm.Fold(section); sec != "" {
		for _, d := range c.disciplines {
			for _, pat := range d.sections {
				if keywords.Contains(sec, pat) {
					return DisciplineResult{Discipline: d.discipline, Source: SourceSection, Evidence: pat}
				}
			}
		}
	}
	if text := textnorm.Fold(description); text != "" {
		var (
			best      = UnknownDiscipline
			bestScore float64
			tied      bool
		)
		for _, d := range c.disciplines {
			score := keywords.Score(d.rules.Count(text))
			switch {
			case score > bestScore:
				best, bestScore, tied = d.discipline, score, false
			case score > 0 && score == bestScore:
				tied = true
			}
		}
		if best != UnknownDiscipline && !tied {
			return DisciplineResult{Discipline: best, Source: SourceDescription}
		}
	}
	if d, share := c.dominantLayerDiscipline(layers); d != UnknownDiscipline {
		return DisciplineResult{
			Discipline: d,
			Source:     SourceLayers,
			Evidence:   fmt.Sprintf("%.0f%% of classified layers", share*100),
		}
	}
	return DisciplineResult{Discipline: UnknownDiscipline, Source: SourceNone}
}

func (c *Classifier) dominantLayerDiscipline(layers []string) (Discipline, float64) {
	counts := map[Discipline]int{}
	known := 0
	for _, l := range layers {
		d := c.DisciplineOfLayer(l)
		if d == UnknownDiscipline {
			continue
		}
		counts[d]++
		known++
	}
	if known == 0 {
		return UnknownDiscipline, 0
	}
	best, n := UnknownDiscipline, 0
	for _, d := range c.disciplines {
		if counts[d.discipline] > n {
			best, n = d.discipline, counts[d.discipline]
		}
	}
	share := float64(n) / float64(known)
	if share < minLayerShare {
		return UnknownDiscipline, share
	}
	return best, share
}

// DisciplineOfLayer reads the discipline from a layer name prefix. An xref
// qualifier ("BASE|") is dropped, then the first token (split at '-', '_',
// '.' or ' ') must equal a prefix; prefixes of three or more letters may also
// start a longer token.
func (c *Classifier) DisciplineOfLayer(layer string) Discipline {
	upper := strings.ToUpper(textnorm.Normalize(layer))
	if i := strings.LastIndex(upper, "|"); i >= 0 {
		upper = upper[i+1:]
	}
	token := upper
	if i := strings.IndexAny(upper, "-_. "); i >= 0 {
		token = upper[:i]
	}
	if token == "" {
		return UnknownDiscipline
	}
	for _, p := range c.prefixes {
		if token == p.prefix || (len(p.prefix) >= 3 && strings.HasPrefix(token, p.prefix)) {
			return p.discipline
		}
	}
	return UnknownDiscipline
}
