// Package domainconfig holds the static, per-domain configuration table the
// resolver core consults for intent lists, domain-detection keywords, step
// adjustment parameters, and response-template device words. It is a
// frozen value, constructed once at process start and never mutated —
// consumers pass it by reference.
package domainconfig

// StepKind distinguishes the two step-calculation branches the step
// controller implements.
type StepKind int

const (
	// StepNone means the domain has no relative-adjustment support.
	StepNone StepKind = iota
	// StepPercentage covers light/cover/fan: clamp to [0,100], percentage step.
	StepPercentage
	// StepAbsolute covers climate: clamp to [min,max], fixed-degree step.
	StepAbsolute
)

// Step is the relative-adjustment configuration for one domain.
type Step struct {
	Kind StepKind

	// Attribute is the state attribute the step controller reads/writes
	// ("brightness", "position", "percentage", "temperature").
	Attribute string

	// StepPercent and MinStep apply when Kind is StepPercentage: the step
	// is max(MinStep, current*StepPercent/100).
	StepPercent int
	MinStep     int

	// OffToOn is the value step_up jumps to from an off/closed state
	// (StepPercentage only).
	OffToOn int

	// StepAbsolute, MinTemp, MaxTemp apply when Kind is StepAbsolute.
	StepAbsolute float64
	MinTemp      float64
	MaxTemp      float64
}

// States maps a raw host-platform state string to its spoken German form
// ("on" -> "an"), used by response templating.
type States map[string]string

// Domain is the full static configuration for one entity domain.
type Domain struct {
	// NameDE and NameDEPlural are the singular/plural German display names.
	NameDE       string
	NameDEPlural string

	// DeviceWordDE is the accusative-case device word used in response
	// templates ("den Rollladen", "das Licht").
	DeviceWordDE string

	// Keywords are the nouns that trigger domain detection in the keyword
	// intent parser; climate is checked before sensor when both match
	// (handled by detection order, not by this table).
	Keywords []string

	// Intents lists the intent names this domain supports.
	Intents []string

	Step   Step
	States States
}

// Config is the frozen set of all known domains, keyed by domain name.
var Config = map[string]Domain{
	"light": {
		NameDE:       "Licht",
		NameDEPlural: "Lichter",
		DeviceWordDE: "das Licht",
		Keywords:     []string{"licht", "lichter", "lampe", "lampen", "leuchte", "leuchten", "beleuchtung", "beleuchtungen", "spot", "spots"},
		Intents:      []string{"HassTurnOn", "HassTurnOff", "HassLightSet", "HassGetState", "HassTemporaryControl"},
		Step: Step{
			Kind:        StepPercentage,
			Attribute:   "brightness",
			StepPercent: 35,
			MinStep:     10,
			OffToOn:     50,
		},
		States: States{"on": "an", "off": "aus"},
	},
	"cover": {
		NameDE:       "Rollladen",
		NameDEPlural: "Rollläden",
		DeviceWordDE: "den Rollladen",
		Keywords:     []string{"rollladen", "rollläden", "rollo", "rollos", "jalousie", "jalousien", "markise", "markisen", "beschattung", "beschattungen"},
		Intents:      []string{"HassTurnOn", "HassTurnOff", "HassSetPosition", "HassGetState", "HassTemporaryControl"},
		Step: Step{
			Kind:        StepPercentage,
			Attribute:   "position",
			StepPercent: 25,
			MinStep:     10,
			OffToOn:     100,
		},
		States: States{"open": "offen", "closed": "geschlossen", "opening": "öffnet", "closing": "schließt"},
	},
	"switch": {
		NameDE:       "Steckdose",
		NameDEPlural: "Steckdosen",
		DeviceWordDE: "die Steckdose",
		Keywords:     []string{"steckdose", "steckdosen", "schalter", "zwischenstecker", "strom"},
		Intents:      []string{"HassTurnOn", "HassTurnOff", "HassGetState", "HassTemporaryControl"},
		Step:         Step{Kind: StepNone},
		States:       States{"on": "an", "off": "aus"},
	},
	"fan": {
		NameDE:       "Ventilator",
		NameDEPlural: "Ventilatoren",
		DeviceWordDE: "den Ventilator",
		Keywords:     []string{"ventilator", "ventilatoren", "lüfter"},
		Intents:      []string{"HassTurnOn", "HassTurnOff", "HassGetState", "HassTemporaryControl"},
		Step: Step{
			Kind:        StepPercentage,
			Attribute:   "percentage",
			StepPercent: 25,
			MinStep:     10,
			OffToOn:     50,
		},
		States: States{"on": "an", "off": "aus"},
	},
	"climate": {
		NameDE:       "Thermostat",
		NameDEPlural: "Thermostate",
		DeviceWordDE: "das Thermostat",
		Keywords:     []string{"thermostat", "thermostate", "heizung", "heizungen", "klimaanlage", "klimaanlagen"},
		Intents:      []string{"HassClimateSetTemperature", "HassTurnOn", "HassTurnOff", "HassGetState"},
		Step: Step{
			Kind:         StepAbsolute,
			Attribute:    "temperature",
			StepAbsolute: 1.0,
			MinTemp:      16,
			MaxTemp:      28,
		},
		States: States{"heat": "heizt", "cool": "kühlt", "off": "aus", "idle": "im Leerlauf"},
	},
	"media_player": {
		NameDE:       "Lautsprecher",
		NameDEPlural: "Lautsprecher",
		DeviceWordDE: "den Lautsprecher",
		Keywords:     []string{"tv", "tvs", "fernseher", "musik", "radio", "radios", "lautsprecher", "player"},
		Intents:      []string{"HassTurnOn", "HassTurnOff", "HassGetState"},
		Step:         Step{Kind: StepNone},
		States:       States{"on": "an", "off": "aus", "playing": "spielt", "paused": "pausiert", "idle": "im Leerlauf"},
	},
	"sensor": {
		NameDE:       "Sensor",
		NameDEPlural: "Sensoren",
		DeviceWordDE: "der Sensor",
		Keywords:     []string{"sensor", "sensoren", "temperatur", "temperaturen", "luftfeuchtigkeit", "feuchtigkeit", "wert", "werte", "status", "zustand", "zustände", "grad", "warm", "kalt", "wieviel"},
		Intents:      []string{"HassGetState"},
		Step:         Step{Kind: StepNone},
		States:       States{},
	},
	"vacuum": {
		NameDE:       "Staubsauger",
		NameDEPlural: "Staubsauger",
		DeviceWordDE: "den Staubsauger",
		Keywords:     []string{"staubsauger", "saugen", "sauge", "staubsaugen", "staubsauge", "wischen", "wische", "putzen", "putze", "reinigen", "reinige", "roboter"},
		Intents:      []string{"HassVacuumStart"},
		Step:         Step{Kind: StepNone},
		States:       States{"cleaning": "saugt", "docked": "angedockt", "returning": "kehrt zurück", "idle": "im Leerlauf"},
	},
	"timer": {
		NameDE:       "Timer",
		NameDEPlural: "Timer",
		DeviceWordDE: "den Timer",
		Keywords:     []string{"timer", "wecker", "erinnerung", "erinnere"},
		Intents:      []string{"HassTimerSet"},
		Step:         Step{Kind: StepNone},
		States:       States{},
	},
	"calendar": {
		NameDE:       "Kalender",
		NameDEPlural: "Kalender",
		DeviceWordDE: "den Kalender",
		Keywords:     []string{"termin", "termine", "kalender", "event", "meeting", "besprechung"},
		Intents:      []string{"HassCalendarCreate", "HassCreateEvent"},
		Step:         Step{Kind: StepNone},
		States:       States{},
	},
	"automation": {
		NameDE:       "Automatisierung",
		NameDEPlural: "Automatisierungen",
		DeviceWordDE: "die Automatisierung",
		Keywords:     []string{"automatisierung", "automatisierungen", "szene", "szenen", "routine", "routinen"},
		Intents:      []string{"HassTurnOn", "HassTurnOff", "HassTemporaryControl"},
		Step:         Step{Kind: StepNone},
		States:       States{"on": "aktiv", "off": "inaktiv"},
	},
}

// DomainDetectionOrder is the fixed precedence the keyword intent parser
// walks when more than one domain's keywords match the same utterance;
// climate is checked before sensor so "wie warm ist es im Büro" (a sensor
// read) does not shadow "mach es wärmer" (a climate step command) and vice
// versa — climate's imperative verbs win the tie.
var DomainDetectionOrder = []string{
	"climate", "light", "cover", "switch", "fan", "media_player",
	"vacuum", "timer", "calendar", "automation", "sensor",
}

// FloorAliases maps a floor name or abbreviation to its known synonyms
// (German abbreviations EG/OG/UG/DG and common spoken forms).
var FloorAliases = map[string][]string{
	"eg":           {"erdgeschoss", "ground floor", "parterre", "unten"},
	"erdgeschoss":  {"eg", "ground floor", "parterre", "unten"},
	"og":           {"obergeschoss", "first floor", "oben"},
	"obergeschoss": {"og", "first floor", "oben"},
	"ug":           {"untergeschoss", "basement", "keller"},
	"untergeschoss": {"ug", "basement", "keller"},
	"keller":       {"ug", "untergeschoss", "basement"},
	"dg":           {"dachgeschoss", "attic", "dach"},
	"dachgeschoss": {"dg", "attic", "dach"},
}

// NonRepeatableIntents are intents the cache safety invariant forbids
// storing: one-shot actions (a timer fire, a calendar create) whose replay
// would not mean the same thing the second time.
var NonRepeatableIntents = map[string]struct{}{
	"HassTimerSet":       {},
	"HassCalendarCreate": {},
	"HassCreateEvent":    {},
	"HassVacuumStart":    {},
}

// Get returns the Domain configuration for name, and whether it exists.
func Get(name string) (Domain, bool) {
	d, ok := Config[name]
	return d, ok
}
