package match

import (
	"strings"

	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/internal/textnorm"
	"yashubustudio/boqmatch/layers"
)

// Special layer keys.
const (
	DefaultLayer   = "0"
	DefpointsLayer = "defpoints"
)

// EvidenceFor returns the geometry a profile can offer for kind, or GeomNone.
// Area and volume fall back to length (vertical surfaces are drawn as runs).
// A count item on a layer whose runs strictly outnumber its placements gets
// length evidence, which the quantity deriver and the gates treat as a
// semantic mismatch. A tie stays count evidence.
func EvidenceFor(kind classify.MeasureKind, p *layers.Profile) layers.GeometryKind {
	switch kind {
	case classify.Area, classify.Volume:
		switch {
		case p.HasArea():
			return layers.GeomArea
		case p.HasLength():
			return layers.GeomLength
		}
	case classify.Length:
		if p.HasLength() {
			return layers.GeomLength
		}
	case classify.Count:
		if !p.HasBlock() {
			return layers.GeomNone
		}
		if p.Dominant() == layers.GeomLength && p.DirectLengths() > p.InstanceCount {
			return layers.GeomLength
		}
		return layers.GeomCount
	case classify.Unknown:
		if d := p.Dominant(); d != layers.GeomNone {
			return d
		}
		switch {
		case p.HasArea():
			return layers.GeomArea
		case p.HasLength():
			return layers.GeomLength
		case p.HasBlock():
			return layers.GeomCount
		}
	}
	return layers.GeomNone
}

// EvidenceKind maps a geometry kind onto the MeasureKind it measures.
func EvidenceKind(g layers.GeometryKind) classify.MeasureKind {
	switch g {
	case layers.GeomArea:
		return classify.Area
	case layers.GeomLength:
		return classify.Length
	case layers.GeomCount:
		return classify.Count
	default:
		return classify.Unknown
	}
}

func expectedGeometry(kind classify.MeasureKind) layers.GeometryKind {
	switch kind {
	case classify.Area, classify.Volume:
		return layers.GeomArea
	case classify.Length:
		return layers.GeomLength
	case classify.Count:
		return layers.GeomCount
	default:
		return layers.GeomNone
	}
}

func hasSupport(ev layers.GeometryKind, p *layers.Profile) bool {
	switch ev {
	case layers.GeomArea:
		return p.TotalArea > 0
	case layers.GeomLength:
		return p.TotalLength > 0
	case layers.GeomCount:
		return p.InstanceCount > 0
	default:
		return false
	}
}

// UntrustedLayer reports whether a layer name looks like annotation or
// reference content: a token equal to one of patterns (or starting with one
// of five or more letters), or an xref-qualified name.
func UntrustedLayer(layer string, patterns []string) bool {
	return untrustedLayer(layer, foldPatterns(patterns))
}

func untrustedLayer(layer string, folded []string) bool {
	if strings.Contains(layer, "|") || strings.Contains(layer, "$0$") {
		return true
	}
	for _, tok := range textnorm.Tokens(layer) {
		for _, p := range folded {
			if tok == p || (len(p) >= 5 && strings.HasPrefix(tok, p)) {
				return true
			}
		}
	}
	return false
}

func foldPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if f := textnorm.Fold(p); f != "" {
			out = append(out, f)
		}
	}
	return out
}
