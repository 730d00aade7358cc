package classify

import "yashubustudio/boqmatch/internal/keywords"

// Rules is the editable keyword configuration of all classifiers. Keys of
// Intents are MeasureKind names, Subtypes is kind -> subtype -> rules.
type Rules struct {
	Intents     map[string]keywords.RuleSet            `yaml:"intents,omitempty" json:"intents,omitempty"`
	Subtypes    map[string]map[string]keywords.RuleSet `yaml:"subtypes,omitempty" json:"subtypes,omitempty"`
	Disciplines map[string]DisciplineRule              `yaml:"disciplines,omitempty" json:"disciplines,omitempty"`
}

// DisciplineRule describes how one discipline is recognized.
type DisciplineRule struct {
	Sections      []string         `yaml:"sections,omitempty" json:"sections,omitempty"`
	Keywords      keywords.RuleSet `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	LayerPrefixes []string         `yaml:"layer_prefixes,omitempty" json:"layer_prefixes,omitempty"`
}

// Merge returns r with every label present in overrides replaced.
func (r Rules) Merge(overrides Rules) Rules {
	out := Rules{
		Intents:     keywords.Merge(r.Intents, overrides.Intents),
		Subtypes:    make(map[string]map[string]keywords.RuleSet, len(r.Subtypes)),
		Disciplines: make(map[string]DisciplineRule, len(r.Disciplines)),
	}
	for kind, subs := range r.Subtypes {
		out.Subtypes[kind] = keywords.Clone(subs)
	}
	for kind, subs := range overrides.Subtypes {
		out.Subtypes[kind] = keywords.Merge(out.Subtypes[kind], subs)
	}
	for name, d := range r.Disciplines {
		out.Disciplines[name] = d.clone()
	}
	for name, d := range overrides.Disciplines {
		out.Disciplines[name] = d.clone()
	}
	return out
}

func (d DisciplineRule) clone() DisciplineRule {
	return DisciplineRule{
		Sections:      append([]string(nil), d.Sections...),
		Keywords:      d.Keywords.Clone(),
		LayerPrefixes: append([]string(nil), d.LayerPrefixes...),
	}
}

// DefaultRules returns a fresh copy of the built-in keyword tables.
func DefaultRules() Rules {
	return Rules{}.Merge(Rules{
		Intents:     defaultIntents,
		Subtypes:    defaultSubtypes,
		Disciplines: defaultDisciplines,
	})
}

var defaultIntents = map[string]keywords.RuleSet{
	string(Length): {
		Strong: []string{
			"tubería", "cañería", "cable", "conductor", "canalización", "ducto",
			"guardapolvo", "cornisa", "zócalo", "moldura", "junquillo", "baranda",
			"pasamanos", "cerco", "canaleta", "bajada de aguas", "solera", "cenefa",
			"alimentador", "escalerilla", "bandeja portaconductores", "pipe", "conduit",
			"cable tray", "handrail", "skirting",
		},
		Weak: []string{"lineal", "perimetral", "borde", "tendido", "recorrido", "line"},
	},
	string(Area): {
		Strong: []string{
			"pavimento", "piso", "cerámica", "porcelanato", "revestimiento", "pintura",
			"estuco", "enlucido", "cielo", "losa", "radier", "membrana",
			"impermeabilización", "tabique", "muro", "alfombra", "vinílico", "césped",
			"baldosa", "cubierta", "techumbre", "flooring", "ceiling", "painting",
			"plaster", "tiling", "roofing",
		},
		Weak: []string{"superficie", "sobrelosa", "terminación", "yeso", "panel", "wall"},
		Anti: []string{"tubería", "cable"},
	},
	string(Volume): {
		Strong: []string{
			"hormigón", "concreto", "excavación", "relleno", "terraplén", "escarpe",
			"movimiento de tierra", "emplantillado", "concrete", "excavation", "backfill",
		},
		Weak: []string{"fundación", "zapata", "sobrecimiento", "cimiento", "footing"},
	},
	string(Count): {
		Strong: []string{
			"tablero", "enchufe", "luminaria", "interruptor", "artefacto", "lavamanos",
			"inodoro", "wc", "puerta", "ventana", "grifería", "válvula", "extintor",
			"rociador", "sensor", "detector", "cámara", "medidor", "bomba", "foco",
			"lavaplatos", "ducha", "socket", "luminaire", "fixture", "door", "window",
			"valve", "sprinkler",
		},
		Weak: []string{"punto", "unidad", "accesorio", "caja", "equipo", "llave"},
	},
	string(Service): {
		Strong: []string{
			"instalación de faena", "certificado", "certificación", "capacitación",
			"tramitación", "permiso", "aseo", "limpieza final", "retiro de escombros",
			"ensayo", "puesta en marcha", "mantención", "gastos generales", "seguro",
			"garantía", "flete", "letrero de obra", "commissioning", "training",
			"permit", "mobilization",
		},
		Weak: []string{"instalación", "gestión", "coordinación", "supervisión", "servicio", "pruebas"},
	},
}

var defaultSubtypes = map[string]map[string]keywords.RuleSet{
	string(Area): {
		"floor":   {Strong: []string{"piso", "pavimento", "radier", "sobrelosa", "porcelanato", "alfombra", "vinílico", "baldosa", "parquet", "floor"}},
		"ceiling": {Strong: []string{"cielo", "cielo raso", "plafón", "cielo falso", "ceiling"}},
		"wall":    {Strong: []string{"muro", "tabique", "estuco", "enlucido", "azulejo", "revestimiento de muro", "wall", "partition"}},
		"roof":    {Strong: []string{"cubierta", "techumbre", "teja", "plancha de techo", "roof"}},
		"opening": {Strong: []string{"ventana", "vano", "ventanal", "muro cortina", "puerta", "opening", "window"}},
	},
	string(Length): {
		"pipe":    {Strong: []string{"tubería", "cañería", "ducto", "pipe", "duct"}},
		"cable":   {Strong: []string{"cable", "conductor", "alimentador", "wire"}},
		"trim":    {Strong: []string{"guardapolvo", "cornisa", "moldura", "junquillo", "zócalo", "skirting"}},
		"railing": {Strong: []string{"baranda", "pasamanos", "railing", "handrail"}},
		"fence":   {Strong: []string{"cerco", "reja", "fence"}},
		"drain":   {Strong: []string{"canaleta", "bajada de aguas", "gutter"}},
	},
	string(Count): {
		"fixture":   {Strong: []string{"luminaria", "foco", "lámpara", "luminaire", "lamp"}},
		"outlet":    {Strong: []string{"enchufe", "interruptor", "toma", "socket", "switch"}},
		"panel":     {Strong: []string{"tablero", "panel"}},
		"sanitary":  {Strong: []string{"inodoro", "lavamanos", "lavaplatos", "ducha", "tina", "wc", "urinario"}},
		"door":      {Strong: []string{"puerta", "door"}},
		"window":    {Strong: []string{"ventana", "window"}},
		"equipment": {Strong: []string{"bomba", "equipo", "extintor", "detector", "rociador", "pump"}},
	},
	string(Volume): {
		"concrete":   {Strong: []string{"hormigón", "concreto", "concrete"}},
		"excavation": {Strong: []string{"excavación", "escarpe", "excavation"}},
		"fill":       {Strong: []string{"relleno", "terraplén", "backfill"}},
	},
}

var defaultDisciplines = map[string]DisciplineRule{
	string(Architecture): {
		Sections:      []string{"arquitectura", "terminaciones", "obras de arquitectura", "architecture", "finishes"},
		Keywords:      keywords.RuleSet{Strong: []string{"pintura", "cerámica", "porcelanato", "cielo", "tabique", "puerta", "ventana", "guardapolvo", "alfombra"}},
		LayerPrefixes: []string{"A", "ARQ", "ARCH"},
	},
	string(Structure): {
		Sections:      []string{"estructura", "obra gruesa", "fundaciones", "structure", "structural"},
		Keywords:      keywords.RuleSet{Strong: []string{"hormigón", "enfierradura", "moldaje", "zapata", "viga", "pilar", "losa", "acero estructural", "rebar"}},
		LayerPrefixes: []string{"S", "EST", "STR"},
	},
	string(Electrical): {
		Sections:      []string{"eléctric", "electricidad", "iluminación", "corrientes débiles", "electrical", "lighting"},
		Keywords:      keywords.RuleSet{Strong: []string{"luminaria", "enchufe", "interruptor", "tablero", "cable", "conductor", "canalización", "alimentador"}},
		LayerPrefixes: []string{"E", "ELEC", "ELE", "IL"},
	},
	string(Sanitary): {
		Sections:      []string{"sanitari", "agua potable", "alcantarillado", "plumbing", "aguas lluvia"},
		Keywords:      keywords.RuleSet{Strong: []string{"inodoro", "lavamanos", "agua potable", "alcantarillado", "cámara de inspección", "grifería", "pvc sanitario"}},
		LayerPrefixes: []string{"P", "IS", "SAN", "PLU"},
	},
	string(HVAC): {
		Sections:      []string{"climatización", "ventilación", "calefacción", "hvac", "mechanical"},
		Keywords:      keywords.RuleSet{Strong: []string{"ducto", "climatización", "ventilación", "extractor", "difusor", "rejilla", "split", "fan coil"}},
		LayerPrefixes: []string{"M", "H", "CLIMA", "HVAC", "MEC"},
	},
	string(Fire): {
		Sections:      []string{"incendio", "red húmeda", "red seca", "fire protection"},
		Keywords:      keywords.RuleSet{Strong: []string{"extintor", "rociador", "red húmeda", "red seca", "detector de humo", "sprinkler"}},
		LayerPrefixes: []string{"F", "FP", "INC"},
	},
	string(Gas): {
		Sections:      []string{"gas"},
		Keywords:      keywords.RuleSet{Strong: []string{"gas", "medidor de gas", "regulador de gas"}},
		LayerPrefixes: []string{"G", "GAS"},
	},
	string(Landscape): {
		Sections:      []string{"paisajismo", "áreas verdes", "landscape", "obras exteriores"},
		Keywords:      keywords.RuleSet{Strong: []string{"césped", "pasto", "árbol", "arbusto", "riego", "jardinera", "maicillo"}},
		LayerPrefixes: []string{"L", "PAIS", "LAND"},
	},
}
