package quantity

import (
	"regexp"
	"strconv"
	"strings"

	"yashubustudio/boqmatch/internal/textnorm"
)

// Provenance of a derivation parameter.
const (
	SourceExtracted = "extracted"
	SourceDefault   = "default"
)

// Param is a derivation parameter with its provenance.
type Param struct {
	Value  float64 `json:"value"`
	Source string  `json:"source"`
	Match  string  `json:"match,omitempty"`
}

// Single letter keys need an explicit separator so that concrete grades like
// "H30" are not read as heights.
var (
	heightRe    = regexp.MustCompile(`\b(?:(?:altura|alto|height)\s*[:=]?|h\s*[:=])\s*(\d+(?:[.,]\d+)?)\s*(mm|cm|mts|mt|m)?\b`)
	thicknessRe = regexp.MustCompile(`\b(?:(?:espesor|esp|thickness)\.?\s*[:=]?|e\s*[:=])\s*(\d+(?:[.,]\d+)?)\s*(mm|cm|mts|mt|m)?\b`)
)

// Height extracts a height in metres from description, falling back to def.
func (d Deriver) Height(description string) Param {
	if v, m, ok := extract(heightRe, description, d.opts.MinHeight, d.opts.MaxHeight); ok {
		return Param{Value: v, Source: SourceExtracted, Match: m}
	}
	return Param{Value: d.opts.DefaultHeight, Source: SourceDefault}
}

// Thickness extracts a thickness in metres from description, falling back to
// the default.
func (d Deriver) Thickness(description string) Param {
	if v, m, ok := extract(thicknessRe, description, d.opts.MinThickness, d.opts.MaxThickness); ok {
		return Param{Value: v, Source: SourceExtracted, Match: m}
	}
	return Param{Value: d.opts.DefaultThickness, Source: SourceDefault}
}

// extract returns the first in-range value matched by re. Values without a
// unit are tried as metres, then centimetres, then millimetres.
func extract(re *regexp.Regexp, description string, lo, hi float64) (float64, string, bool) {
	text := textnorm.Fold(description)
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			continue
		}
		var tries []float64
		switch m[2] {
		case "mm":
			tries = []float64{v / 1000}
		case "cm":
			tries = []float64{v / 100}
		case "m", "mt", "mts":
			tries = []float64{v}
		default:
			tries = []float64{v, v / 100, v / 1000}
		}
		for _, t := range tries {
			if t >= lo && t <= hi {
				return t, strings.TrimSpace(m[0]), true
			}
		}
	}
	return 0, "", false
}
