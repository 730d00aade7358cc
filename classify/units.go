package classify

import "yashubustudio/boqmatch/internal/textnorm"

// unitSynonyms lists every recognized unit spelling per kind, already in the
// folded form produced by textnorm.Unit.
var unitSynonyms = map[MeasureKind][]string{
	Length: {
		"m", "ml", "mt", "mts", "mtl", "mtrs", "metro", "metros", "metrolineal",
		"metroslineales", "mlineal", "lm", "lin", "lnm", "meter", "meters",
		"metre", "metres", "linearmeter", "lf", "ft", "km",
	},
	Area: {
		"m2", "mt2", "mts2", "metro2", "metros2", "metrocuadrado",
		"metroscuadrados", "mcuadrado", "mc2", "sqm", "sqmt", "squaremeter",
		"squaremeters", "sqft", "sf", "ft2", "ha",
	},
	Volume: {
		"m3", "mt3", "mts3", "metro3", "metros3", "metrocubico", "metroscubicos",
		"mcubico", "cum", "cbm", "cubicmeter", "cubicmeters", "cy",
	},
	Count: {
		"u", "un", "und", "uni", "unid", "unidad", "unidades", "pza", "pz",
		"pieza", "piezas", "pto", "pt", "punto", "puntos", "nr", "no", "nro",
		"n", "c", "cu", "cada", "ea", "each", "pc", "pcs", "piece", "pieces",
		"unit", "units", "jgo", "juego", "set", "par",
	},
	Service: {
		"gl", "glb", "gbl", "global", "sg", "sumaglobal", "ls", "lumpsum",
		"servicio", "servicios", "serv", "instalacion", "est", "estimado",
		"lote", "mes", "dia", "hr", "hora", "horas",
	},
}

var unitIndex = buildUnitIndex(unitSynonyms)

func buildUnitIndex(table map[MeasureKind][]string) map[string]MeasureKind {
	idx := make(map[string]MeasureKind)
	for _, kind := range kindOrder {
		for _, u := range table[kind] {
			key := textnorm.Unit(u)
			if key == "" {
				continue
			}
			if _, dup := idx[key]; dup {
				continue
			}
			idx[key] = kind
		}
	}
	return idx
}

// UnitKind looks up a declared unit. The second result is false when the unit
// is empty or not in the synonym table.
func UnitKind(unit string) (MeasureKind, bool) {
	key := textnorm.Unit(unit)
	if key == "" {
		return Unknown, false
	}
	kind, ok := unitIndex[key]
	return kind, ok
}

// UnitSynonyms returns a copy of the synonym table.
func UnitSynonyms() map[MeasureKind][]string {
	out := make(map[MeasureKind][]string, len(unitSynonyms))
	for k, v := range unitSynonyms {
		out[k] = append([]string(nil), v...)
	}
	return out
}
