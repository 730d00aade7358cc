package geometry

// UnitScale converts raw drawing units into metres (Length) and square
// metres (Area).
type UnitScale struct {
	Length float64 `json:"length" yaml:"length"`
	Area   float64 `json:"area" yaml:"area"`
}

// Meters is the scale of a drawing already in metres.
var Meters = UnitScale{Length: 1, Area: 1}

// Normalized fills a missing area factor from the length factor and defaults
// a missing length factor to 1.
func (u UnitScale) Normalized() UnitScale {
	if u.Length <= 0 {
		u.Length = 1
	}
	if u.Area <= 0 {
		u.Area = u.Length * u.Length
	}
	return u
}

// ScaleFromInsUnits maps a declared $INSUNITS code to a metric scale.
func ScaleFromInsUnits(code int) (UnitScale, bool) {
	var l float64
	switch code {
	case 1:
		l = 0.0254
	case 2:
		l = 0.3048
	case 4:
		l = 0.001
	case 5:
		l = 0.01
	case 6:
		l = 1
	case 14:
		l = 0.1
	default:
		return UnitScale{}, false
	}
	return UnitScale{Length: l, Area: l * l}, true
}
