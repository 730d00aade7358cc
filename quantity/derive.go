// Package quantity turns accepted geometric evidence into a final quantity.
// Derivation is a pure function of the evidence, the calculation method and
// the description; profiles are never modified.
package quantity

import (
	"fmt"
	"math"
	"strconv"

	"yashubustudio/boqmatch/classify"
	"yashubustudio/boqmatch/layers"
)

// Options are the derivation constants.
type Options struct {
	DefaultHeight      float64 `yaml:"default_height" json:"default_height"`
	DefaultThickness   float64 `yaml:"default_thickness" json:"default_thickness"`
	MinHeight          float64 `yaml:"min_height" json:"min_height"`
	MaxHeight          float64 `yaml:"max_height" json:"max_height"`
	MinThickness       float64 `yaml:"min_thickness" json:"min_thickness"`
	MaxThickness       float64 `yaml:"max_thickness" json:"max_thickness"`
	MismatchConfidence float64 `yaml:"mismatch_confidence" json:"mismatch_confidence"`
}

// DefaultOptions returns the built-in constants.
func DefaultOptions() Options {
	return Options{
		DefaultHeight:      2.4,
		DefaultThickness:   0.15,
		MinHeight:          0.1,
		MaxHeight:          20,
		MinThickness:       0.005,
		MaxThickness:       2,
		MismatchConfidence: 0.3,
	}
}

// ApplyDefaults fills non-positive fields.
func (o Options) ApplyDefaults() Options {
	d := DefaultOptions()
	orDefault(&o.DefaultHeight, d.DefaultHeight)
	orDefault(&o.DefaultThickness, d.DefaultThickness)
	orDefault(&o.MinHeight, d.MinHeight)
	orDefault(&o.MaxHeight, d.MaxHeight)
	orDefault(&o.MinThickness, d.MinThickness)
	orDefault(&o.MaxThickness, d.MaxThickness)
	orDefault(&o.MismatchConfidence, d.MismatchConfidence)
	return o
}

func orDefault(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}

// Deriver computes quantities.
type Deriver struct {
	opts Options
}

// NewDeriver creates a Deriver; zero options take defaults.
func NewDeriver(opts Options) Deriver {
	return Deriver{opts: opts.ApplyDefaults()}
}

// Evidence is the accepted geometry for one line item.
type Evidence struct {
	Kind    layers.GeometryKind
	Profile *layers.Profile
}

// Derivation is the result with its audit trail. Quantity is nil when the
// evidence cannot support the method.
type Derivation struct {
	Quantity      *float64            `json:"quantity"`
	Method        classify.CalcMethod `json:"method"`
	Formula       string              `json:"formula,omitempty"`
	Steps         []string            `json:"steps,omitempty"`
	Height        *Param              `json:"height,omitempty"`
	Thickness     *Param              `json:"thickness,omitempty"`
	Mismatch      bool                `json:"mismatch,omitempty"`
	ConfidenceCap float64             `json:"confidence_cap,omitempty"`
}

func (d *Derivation) set(v float64, formula string) {
	d.Quantity = &v
	d.Formula = formula
	d.Steps = append(d.Steps, fmt.Sprintf("%s = %s", formula, formatQty(v)))
}

func (d *Derivation) step(format string, args ...any) {
	d.Steps = append(d.Steps, fmt.Sprintf(format, args...))
}

// Derive computes the quantity for method from ev and description.
func (dv Deriver) Derive(method classify.CalcMethod, ev Evidence, description string) Derivation {
	d := Derivation{Method: method}
	if method == classify.MethodService {
		d.set(1, "service")
		return d
	}
	if ev.Profile == nil || ev.Kind == layers.GeomNone {
		d.step("no geometric evidence")
		return d
	}
	p := ev.Profile
	if method == classify.MethodUnknown {
		method = methodForEvidence(ev.Kind)
		d.Method = method
		d.step("method resolved from %s evidence", ev.Kind)
	}

	switch method {
	case classify.MethodCount:
		switch ev.Kind {
		case layers.GeomCount:
			d.set(float64(p.InstanceCount), fmt.Sprintf("count(%s)", p.Name))
		case layers.GeomLength:
			d.Mismatch = true
			d.ConfidenceCap = dv.opts.MismatchConfidence
			d.step("count expected but %s is dominated by runs", p.Name)
			d.set(1, "forced 1")
		default:
			d.step("%s evidence cannot be counted", ev.Kind)
		}
	case classify.MethodLength:
		if ev.Kind == layers.GeomLength {
			d.set(p.TotalLength, fmt.Sprintf("length(%s)", p.Name))
		} else {
			d.step("%s evidence has no length", ev.Kind)
		}
	case classify.MethodArea:
		switch ev.Kind {
		case layers.GeomArea:
			d.set(p.TotalArea, fmt.Sprintf("area(%s)", p.Name))
		case layers.GeomLength:
			h := dv.Height(description)
			d.Height = &h
			d.step("height %s m (%s)", formatQty(h.Value), h.Source)
			d.set(p.TotalLength*h.Value, fmt.Sprintf("length(%s) %s x height %s", p.Name, formatQty(p.TotalLength), formatQty(h.Value)))
		default:
			d.step("%s evidence has no area", ev.Kind)
		}
	case classify.MethodVolume:
		t := dv.Thickness(description)
		switch ev.Kind {
		case layers.GeomArea:
			d.Thickness = &t
			d.step("thickness %s m (%s)", formatQty(t.Value), t.Source)
			d.set(p.TotalArea*t.Value, fmt.Sprintf("area(%s) %s x thickness %s", p.Name, formatQty(p.TotalArea), formatQty(t.Value)))
		case layers.GeomLength:
			h := dv.Height(description)
			d.Height, d.Thickness = &h, &t
			d.step("height %s m (%s), thickness %s m (%s)", formatQty(h.Value), h.Source, formatQty(t.Value), t.Source)
			d.set(p.TotalLength*h.Value*t.Value, fmt.Sprintf("length(%s) %s x height %s x thickness %s",
				p.Name, formatQty(p.TotalLength), formatQty(h.Value), formatQty(t.Value)))
		default:
			d.step("%s evidence has no volume", ev.Kind)
		}
	default:
		d.step("no calculation method")
	}
	return d
}

func methodForEvidence(g layers.GeometryKind) classify.CalcMethod {
	switch g {
	case layers.GeomArea:
		return classify.MethodArea
	case layers.GeomLength:
		return classify.MethodLength
	case layers.GeomCount:
		return classify.MethodCount
	default:
		return classify.MethodUnknown
	}
}

func formatQty(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
