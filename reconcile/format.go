package reconcile

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/match"
)

func matchReason(c *match.Candidate) string {
	parts := []string{fmt.Sprintf("similarity %.3f (rank %d)", c.Similarity, c.SimilarityRank)}
	for _, a := range c.Adjustments {
		parts = append(parts, formatAdjustment(a))
	}
	view := ""
	if c.View == match.ViewBlock {
		view = " block view"
	}
	return fmt.Sprintf("%s%s: %s => %.3f", c.Layer, view, strings.Join(parts, ", "), c.Score)
}

func formatAdjustment(a match.Adjustment) string {
	s := fmt.Sprintf("%s %s%.3g", a.Name, a.Op, a.Value)
	if a.Note != "" {
		s += " [" + a.Note + "]"
	}
	return s
}

func unmatchedReason(res match.Result, kind classify.MeasureKind) string {
	switch res.RejectionKind {
	case match.RejectNoCandidates:
		return fmt.Sprintf("no layer carries %s geometry (%d considered)", kind, res.Considered)
	case match.RejectBelowThreshold:
		if best, ok := suggestionAt(res.Suggestions, 0); ok {
			return fmt.Sprintf("best candidate %s scored %.3f, below threshold", best.Layer, best.Score)
		}
		return "no candidate above threshold"
	case match.RejectNotApplicable:
		return "item is not matched against geometry"
	}
	return "unmatched"
}

func suggestionAt(s []match.Candidate, idx int) (match.Candidate, bool) {
	if idx < 0 || idx >= len(s) {
		return match.Candidate{}, false
	}
	return s[idx], true
}

func suggestionLabel(c match.Candidate) string {
	if c.View == match.ViewBlock {
		return c.Layer + " [block]"
	}
	return c.Layer
}

// formatSuggestionAt renders one suggestion as "LAYER (score)".
func formatSuggestionAt(list []match.Candidate, idx int) string {
	if sug, ok := suggestionAt(list, idx); ok {
		return fmt.Sprintf("%s (%.3f)", suggestionLabel(sug), sug.Score)
	}
	return ""
}

func formatQuantity(q *float64) string {
	if q == nil {
		return ""
	}
	return strconv.FormatFloat(*q, 'f', -1, 64)
}

// csvHeader lists the result columns, one row per line item.
var csvHeader = []string{
	"row", "code", "description", "unit", "declared_quantity", "section",
	"kind", "method", "subtype", "discipline",
	"layer", "final_quantity", "confidence", "bucket", "status",
	"match_reason", "rejection_kind", "derivation",
	"suggestion_1", "suggestion_2", "suggestion_3", "warnings",
}

// WriteCSV writes one line per row in report order.
func WriteCSV(w io.Writer, rep *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return &StageError{Stage: StageOutput, Err: err}
	}
	for _, r := range rep.Rows {
		rec := []string{
			strconv.Itoa(r.Item.RowIndex),
			r.Item.Code,
			r.Item.Description,
			r.Item.DeclaredUnit,
			formatQuantity(r.Item.DeclaredQuantity),
			r.Item.Section,
			string(r.Intent.Kind),
			string(r.Method),
			r.Subtype.Name,
			string(r.Discipline.Discipline),
			r.Layer(),
			formatQuantity(r.FinalQuantity),
			strconv.FormatFloat(r.Confidence, 'f', 3, 64),
			string(r.Bucket),
			string(r.Status),
			r.MatchReason,
			r.RejectionKind,
			strings.Join(r.Derivation.Steps, "; "),
			formatSuggestionAt(r.Suggestions, 0),
			formatSuggestionAt(r.Suggestions, 1),
			formatSuggestionAt(r.Suggestions, 2),
			strings.Join(r.Warnings, "; "),
		}
		if err := cw.Write(rec); err != nil {
			return &StageError{Stage: StageOutput, Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &StageError{Stage: StageOutput, Err: err}
	}
	return nil
}

// WriteJSON writes the indented report.
func WriteJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return &StageError{Stage: StageOutput, Err: err}
	}
	return nil
}
