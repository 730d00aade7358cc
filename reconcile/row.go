package reconcile

import (
	"yashubustudio/boqmatch/boqio"
	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/gates"
	"yashubustudio/boqmatch/match"
	"yashubustudio/boqmatch/quantity"
)

// Status is the review state of a row.
type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	// StatusUnmatched means no compatible layer was found; the quantity is
	// null by construction.
	StatusUnmatched Status = "unmatched"
	// StatusTypeMismatch means the accepted evidence contradicts the declared
	// unit. It is reported apart from ordinary low confidence.
	StatusTypeMismatch Status = "type_mismatch"
)

// Bucket is a coarse confidence band.
type Bucket string

const (
	BucketHigh   Bucket = "high"
	BucketMedium Bucket = "medium"
	BucketLow    Bucket = "low"
	BucketNone   Bucket = "none"
)

const (
	highConfidence   = 0.75
	mediumConfidence = 0.5
)

// BucketFor maps a confidence to its band.
func BucketFor(conf float64) Bucket {
	switch {
	case conf >= highConfidence:
		return BucketHigh
	case conf >= mediumConfidence:
		return BucketMedium
	case conf > 0:
		return BucketLow
	default:
		return BucketNone
	}
}

// StagedRow is the outcome for one line item. It carries its own rationale:
// the match reason, the rejection and derivation trails and the gate
// findings.
type StagedRow struct {
	Item          boqio.LineItem            `json:"item"`
	Intent        classify.Intent           `json:"intent"`
	Method        classify.CalcMethod       `json:"method"`
	Subtype       classify.Subtype          `json:"subtype"`
	Discipline    classify.DisciplineResult `json:"discipline"`
	Candidate     *match.Candidate          `json:"candidate,omitempty"`
	FinalQuantity *float64                  `json:"final_quantity"`
	Confidence    float64                   `json:"confidence"`
	Bucket        Bucket                    `json:"bucket"`
	Status        Status                    `json:"status"`
	MatchReason   string                    `json:"match_reason"`
	RejectionKind string                    `json:"rejection_kind,omitempty"`
	Derivation    quantity.Derivation       `json:"derivation"`
	Rejections    []match.Rejection         `json:"rejections,omitempty"`
	Suggestions   []match.Candidate         `json:"suggestions,omitempty"`
	Findings      []gates.Finding           `json:"findings,omitempty"`
	Warnings      []string                  `json:"warnings,omitempty"`
}

// Layer is the matched layer name, empty when unmatched.
func (r StagedRow) Layer() string {
	if r.Candidate == nil {
		return ""
	}
	return r.Candidate.Layer
}
