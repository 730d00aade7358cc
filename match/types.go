package match

import (
	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/layers"
)

// View tells which profile map a candidate came from.
type View string

const (
	ViewLayer View = "layer"
	// ViewBlock is the root-layer profile: geometry inside instances placed
	// on the layer.
	ViewBlock View = "block"
)

// Rejection kinds for an unmatched item.
const (
	RejectNoCandidates   = "no_candidates"
	RejectBelowThreshold = "below_threshold"
	RejectNotApplicable  = "not_applicable"
)

// Query is what the matcher needs to know about a line item.
type Query struct {
	Description string
	Section     string
	Kind        classify.MeasureKind
	Subtype     string
}

// Adjustment is one recorded score change.
type Adjustment struct {
	Name  string  `json:"name"`
	Op    string  `json:"op"`
	Value float64 `json:"value"`
	Note  string  `json:"note,omitempty"`
}

// Candidate is one scored layer.
type Candidate struct {
	Layer          string              `json:"layer"`
	Key            string              `json:"key"`
	View           View                `json:"view"`
	Evidence       layers.GeometryKind `json:"evidence"`
	Similarity     float64             `json:"similarity"`
	SimilarityRank int                 `json:"similarity_rank"`
	Adjustments    []Adjustment        `json:"adjustments,omitempty"`
	Score          float64             `json:"score"`
	Confidence     float64             `json:"confidence"`
	Profile        *layers.Profile     `json:"-"`
}

// Rejection records why a layer was dropped.
type Rejection struct {
	Layer  string `json:"layer"`
	View   View   `json:"view"`
	Reason string `json:"reason"`
}

// Result is the outcome of matching one query.
type Result struct {
	Accepted      *Candidate  `json:"accepted,omitempty"`
	Ranked        []Candidate `json:"-"`
	Suggestions   []Candidate `json:"suggestions,omitempty"`
	Rejections    []Rejection `json:"rejections,omitempty"`
	RejectionKind string      `json:"rejection_kind,omitempty"`
	Considered    int         `json:"considered"`

	Discipline classify.DisciplineResult `json:"discipline"`
}

// RejectionRate is the share of considered layers dropped before scoring.
func (r Result) RejectionRate() float64 {
	if r.Considered == 0 {
		return 0
	}
	return float64(len(r.Rejections)) / float64(r.Considered)
}
