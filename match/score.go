package match

// Scoring holds every tunable constant of candidate scoring.
type Scoring struct {
	AcceptThreshold     float64  `yaml:"accept_threshold" json:"accept_threshold"`
	MappingBoostPerHit  float64  `yaml:"mapping_boost_per_hit" json:"mapping_boost_per_hit"`
	MappingBoostCap     float64  `yaml:"mapping_boost_cap" json:"mapping_boost_cap"`
	DominantKindBonus   float64  `yaml:"dominant_kind_bonus" json:"dominant_kind_bonus"`
	AreaBonusScale      float64  `yaml:"area_bonus_scale" json:"area_bonus_scale"`
	AreaBonusCap        float64  `yaml:"area_bonus_cap" json:"area_bonus_cap"`
	SubtypeBonus        float64  `yaml:"subtype_bonus" json:"subtype_bonus"`
	DefpointsPenalty    float64  `yaml:"defpoints_penalty" json:"defpoints_penalty"`
	UntrustedPenalty    float64  `yaml:"untrusted_penalty" json:"untrusted_penalty"`
	DefaultLayerPenalty float64  `yaml:"default_layer_penalty" json:"default_layer_penalty"`
	DisciplinePenalty   float64  `yaml:"discipline_penalty" json:"discipline_penalty"`
	Suggestions         int      `yaml:"suggestions" json:"suggestions"`
	UntrustedPatterns   []string `yaml:"untrusted_patterns" json:"untrusted_patterns"`
}

// DefaultScoring returns the built-in scoring constants.
func DefaultScoring() Scoring {
	return Scoring{
		AcceptThreshold:     0.4,
		MappingBoostPerHit:  0.2,
		MappingBoostCap:     0.4,
		DominantKindBonus:   0.1,
		AreaBonusScale:      0.02,
		AreaBonusCap:        0.1,
		SubtypeBonus:        0.05,
		DefpointsPenalty:    0.1,
		UntrustedPenalty:    0.5,
		DefaultLayerPenalty: 0.5,
		DisciplinePenalty:   0.7,
		Suggestions:         3,
		UntrustedPatterns: []string{
			"dim", "dims", "dimension", "cota", "cotas", "acot", "text", "texto",
			"textos", "anno", "annotation", "viewport", "vport", "xref", "title",
			"rotulo", "grid", "eje", "ejes",
		},
	}
}

// ApplyDefaults fills zero values from DefaultScoring.
func (s Scoring) ApplyDefaults() Scoring {
	d := DefaultScoring()
	setF := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	setF(&s.AcceptThreshold, d.AcceptThreshold)
	setF(&s.MappingBoostPerHit, d.MappingBoostPerHit)
	setF(&s.MappingBoostCap, d.MappingBoostCap)
	setF(&s.DominantKindBonus, d.DominantKindBonus)
	setF(&s.AreaBonusScale, d.AreaBonusScale)
	setF(&s.AreaBonusCap, d.AreaBonusCap)
	setF(&s.SubtypeBonus, d.SubtypeBonus)
	setF(&s.DefpointsPenalty, d.DefpointsPenalty)
	setF(&s.UntrustedPenalty, d.UntrustedPenalty)
	setF(&s.DefaultLayerPenalty, d.DefaultLayerPenalty)
	setF(&s.DisciplinePenalty, d.DisciplinePenalty)
	if s.Suggestions <= 0 {
		s.Suggestions = d.Suggestions
	}
	if len(s.UntrustedPatterns) == 0 {
		s.UntrustedPatterns = d.UntrustedPatterns
	}
	return s
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
