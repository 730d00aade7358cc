// Package classify maps line items to a canonical MeasureKind, a calculation
// method, a subtype and a construction discipline. Declared units are
// authoritative; description keywords are only hints.
package classify

// MeasureKind is the geometric category a line item expects.
type MeasureKind string

const (
	Length  MeasureKind = "length"
	Area    MeasureKind = "area"
	Volume  MeasureKind = "volume"
	Count   MeasureKind = "count"
	Service MeasureKind = "service"
	Unknown MeasureKind = "unknown"
)

// kindOrder fixes tie-breaks between kinds.
var kindOrder = []MeasureKind{Length, Area, Volume, Count, Service}

// Kinds returns the classifiable kinds in their fixed order.
func Kinds() []MeasureKind {
	return append([]MeasureKind(nil), kindOrder...)
}

// ParseKind maps a kind name back to its MeasureKind.
func ParseKind(s string) MeasureKind {
	for _, k := range kindOrder {
		if string(k) == s {
			return k
		}
	}
	return Unknown
}

// CalcMethod is the formula that turns matched geometry into a quantity.
type CalcMethod string

const (
	MethodCount   CalcMethod = "count"
	MethodLength  CalcMethod = "length"
	MethodArea    CalcMethod = "area"
	MethodVolume  CalcMethod = "volume"
	MethodService CalcMethod = "service"
	MethodUnknown CalcMethod = "unknown"
)

// MethodFor returns the calculation method for kind.
func MethodFor(kind MeasureKind) CalcMethod {
	switch kind {
	case Length:
		return MethodLength
	case Area:
		return MethodArea
	case Volume:
		return MethodVolume
	case Count:
		return MethodCount
	case Service:
		return MethodService
	default:
		return MethodUnknown
	}
}

// Compatible reports whether evidence of kind evidence can satisfy an item
// expecting expected. Unknown is compatible with every geometry kind, service
// with none.
func Compatible(expected, evidence MeasureKind) bool {
	if expected == Service || evidence == Service {
		return false
	}
	if expected == Unknown || evidence == Unknown {
		return true
	}
	return expected == evidence
}
