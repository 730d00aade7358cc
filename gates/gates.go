// Package gates runs independent post-hoc checks on a derived row. Any
// error-severity finding sends the row back to review whatever its score.
package gates

import (
	"fmt"
	"math"

	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/match"
	"yashubustudio/boqmatch/quantity"
)

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding codes.
const (
	CodeLowConfidence     = "low_confidence"
	CodeKindMismatch      = "kind_mismatch"
	CodeZeroQuantity      = "zero_quantity"
	CodeImplausible       = "implausible_quantity"
	CodeUntrustedLayer    = "untrusted_layer"
	CodeSubtypeConflict   = "subtype_contradiction"
	CodeMissingMetrics    = "missing_metrics"
	CodeHighRejection     = "high_rejection_rate"
	CodeDeclaredDeviation = "declared_quantity_deviation"
)

// Finding is one gate result.
type Finding struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Range bounds a plausible quantity.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Options are the gate thresholds.
type Options struct {
	AcceptThreshold    float64          `yaml:"-" json:"-"`
	Ranges             map[string]Range `yaml:"ranges" json:"ranges"`
	RejectionRateLimit float64          `yaml:"rejection_rate_limit" json:"rejection_rate_limit"`
	MinConsidered      int              `yaml:"min_considered" json:"min_considered"`
	DeviationWarning   float64          `yaml:"deviation_warning" json:"deviation_warning"`
	DeviationInfo      float64          `yaml:"deviation_info" json:"deviation_info"`
	UntrustedPatterns  []string         `yaml:"-" json:"-"`
}

// DefaultOptions returns the built-in thresholds.
func DefaultOptions() Options {
	return Options{
		AcceptThreshold: match.DefaultScoring().AcceptThreshold,
		Ranges: map[string]Range{
			string(classify.Length): {Min: 0.01, Max: 20000},
			string(classify.Area):   {Min: 0.01, Max: 100000},
			string(classify.Volume): {Min: 0.001, Max: 50000},
			string(classify.Count):  {Min: 1, Max: 100000},
		},
		RejectionRateLimit: 0.9,
		MinConsidered:      3,
		DeviationWarning:   0.5,
		DeviationInfo:      0.1,
		UntrustedPatterns:  match.DefaultScoring().UntrustedPatterns,
	}
}

// ApplyDefaults fills zero fields; missing ranges are added per kind.
func (o Options) ApplyDefaults() Options {
	d := DefaultOptions()
	if o.AcceptThreshold <= 0 {
		o.AcceptThreshold = d.AcceptThreshold
	}
	ranges := make(map[string]Range, len(d.Ranges))
	for k, r := range d.Ranges {
		ranges[k] = r
	}
	for k, r := range o.Ranges {
		ranges[k] = r
	}
	o.Ranges = ranges
	if o.RejectionRateLimit <= 0 {
		o.RejectionRateLimit = d.RejectionRateLimit
	}
	if o.MinConsidered <= 0 {
		o.MinConsidered = d.MinConsidered
	}
	if o.DeviationWarning <= 0 {
		o.DeviationWarning = d.DeviationWarning
	}
	if o.DeviationInfo <= 0 {
		o.DeviationInfo = d.DeviationInfo
	}
	if len(o.UntrustedPatterns) == 0 {
		o.UntrustedPatterns = d.UntrustedPatterns
	}
	return o
}

// Input is everything the gates look at for one row.
type Input struct {
	Intent           classify.Intent
	Subtype          string
	Match            match.Result
	Derivation       quantity.Derivation
	Confidence       float64
	DeclaredQuantity *float64
}

// Gates evaluates findings. It is immutable and safe for concurrent use.
type Gates struct {
	opts Options
	cls  *classify.Classifier
}

// New creates the gates. cls is used for subtype contradictions and may be
// nil to skip that check.
func New(opts Options, cls *classify.Classifier) *Gates {
	return &Gates{opts: opts.ApplyDefaults(), cls: cls}
}

// Check runs every gate and returns the findings in a fixed order.
func (g *Gates) Check(in Input) []Finding {
	var out []Finding
	add := func(code string, sev Severity, format string, args ...any) {
		out = append(out, Finding{Code: code, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}
	cand := in.Match.Accepted
	qty := in.Derivation.Quantity
	kind := in.Intent.Kind

	if cand != nil {
		if in.Confidence < g.opts.AcceptThreshold {
			add(CodeLowConfidence, SeverityError, "confidence %.2f below %.2f", in.Confidence, g.opts.AcceptThreshold)
		}
		ev := match.EvidenceKind(cand.Evidence)
		if in.Derivation.Mismatch || !Supports(kind, ev) {
			add(CodeKindMismatch, SeverityError, "%s item matched to %s evidence on %s", kind, ev, cand.Layer)
		}
		if qty == nil {
			add(CodeMissingMetrics, SeverityError, "layer %s matched but yields no %s quantity", cand.Layer, in.Derivation.Method)
		} else if *qty == 0 {
			add(CodeZeroQuantity, SeverityError, "layer %s matched with zero quantity", cand.Layer)
		}
		if cand.Key == match.DefaultLayer || cand.Key == match.DefpointsLayer || match.UntrustedLayer(cand.Layer, g.opts.UntrustedPatterns) {
			add(CodeUntrustedLayer, SeverityWarning, "quantity taken from untrusted layer %s", cand.Layer)
		}
		if g.cls != nil && in.Subtype != "" && in.Subtype != classify.GenericSubtype {
			if ls := g.cls.LayerSubtype(kind, cand.Layer); ls != classify.GenericSubtype && ls != in.Subtype {
				add(CodeSubtypeConflict, SeverityWarning, "item reads as %s but layer %s reads as %s", in.Subtype, cand.Layer, ls)
			}
		}
	}

	if qty != nil && *qty != 0 && kind != classify.Service {
		rk := kind
		if rk == classify.Unknown && cand != nil {
			rk = match.EvidenceKind(cand.Evidence)
		}
		if r, ok := g.opts.Ranges[string(rk)]; ok {
			switch {
			case r.Max > 0 && *qty > r.Max:
				add(CodeImplausible, SeverityError, "%s quantity %.4g above plausible maximum %.4g; check the drawing units", rk, *qty, r.Max)
			case *qty < r.Min:
				add(CodeImplausible, SeverityWarning, "%s quantity %.4g below plausible minimum %.4g", rk, *qty, r.Min)
			}
		}
	}

	if in.Match.Considered >= g.opts.MinConsidered && in.Match.RejectionRate() > g.opts.RejectionRateLimit {
		add(CodeHighRejection, SeverityInfo, "%d of %d layers rejected before scoring", len(in.Match.Rejections), in.Match.Considered)
	}

	if in.DeclaredQuantity != nil && *in.DeclaredQuantity > 0 && qty != nil && !in.Derivation.Mismatch {
		dev := math.Abs(*qty-*in.DeclaredQuantity) / *in.DeclaredQuantity
		switch {
		case dev > g.opts.DeviationWarning:
			add(CodeDeclaredDeviation, SeverityWarning, "derived %.4g differs %.0f%% from declared %.4g", *qty, dev*100, *in.DeclaredQuantity)
		case dev > g.opts.DeviationInfo:
			add(CodeDeclaredDeviation, SeverityInfo, "derived %.4g differs %.0f%% from declared %.4g", *qty, dev*100, *in.DeclaredQuantity)
		}
	}
	return out
}

// Supports reports whether evidence of kind ev may stand in for expected:
// compatible kinds, length for area (vertical surfaces) and area or length
// for volume.
func Supports(expected, ev classify.MeasureKind) bool {
	if classify.Compatible(expected, ev) {
		return true
	}
	switch expected {
	case classify.Area:
		return ev == classify.Length
	case classify.Volume:
		return ev == classify.Area || ev == classify.Length
	}
	return false
}

// HasErrors reports an error-severity finding.
func HasErrors(fs []Finding) bool {
	for _, f := range fs {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Has reports a finding with code.
func Has(fs []Finding, code string) bool {
	for _, f := range fs {
		if f.Code == code {
			return true
		}
	}
	return false
}
