package boqio

// ColumnCandidates defines possible header names for auto-detecting line-item
// columns.
type ColumnCandidates struct {
	Code        []string `yaml:"code" json:"code"`
	Description []string `yaml:"description" json:"description"`
	Unit        []string `yaml:"unit" json:"unit"`
	Quantity    []string `yaml:"quantity" json:"quantity"`
}

func defaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		Code:        []string{"item", "ítem", "codigo", "código", "cod", "cód", "id", "no", "nº", "n°", "code"},
		Description: []string{"descripcion", "descripción", "partida", "designacion", "designación", "concepto", "description"},
		Unit:        []string{"unidad", "ud", "und", "un", "unid", "unit", "uom"},
		Quantity:    []string{"cantidad", "cant", "cant.", "metrado", "qty", "quantity"},
	}
}

// DefaultColumnCandidates returns the built-in column detection candidates.
func DefaultColumnCandidates() ColumnCandidates {
	return defaultColumnCandidates().clone()
}

// withDefaults fills nil fields from the built-in candidates, so callers can
// override only the parts they need.
func (c ColumnCandidates) withDefaults() ColumnCandidates {
	defaults := defaultColumnCandidates()
	return ColumnCandidates{
		Code:        pickStrings(c.Code, defaults.Code),
		Description: pickStrings(c.Description, defaults.Description),
		Unit:        pickStrings(c.Unit, defaults.Unit),
		Quantity:    pickStrings(c.Quantity, defaults.Quantity),
	}
}

func (c ColumnCandidates) clone() ColumnCandidates {
	return ColumnCandidates{
		Code:        cloneStrings(c.Code),
		Description: cloneStrings(c.Description),
		Unit:        cloneStrings(c.Unit),
		Quantity:    cloneStrings(c.Quantity),
	}
}

func pickStrings(custom, fallback []string) []string {
	if custom == nil {
		return cloneStrings(fallback)
	}
	return cloneStrings(custom)
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
