package german

// GenericNounSingulars are bare domain nouns ("licht", "lampe", "rollladen")
// that name an entity *class* rather than a specific device. The entity
// resolver rejects a name-only query against this set
// unless the utterance also carries a plural/global keyword or an area, so
// "Schalte den Spot an" does not silently address every spot in the home.
var GenericNounSingulars = map[string]struct{}{
	"licht":       {},
	"lampe":       {},
	"leuchte":     {},
	"beleuchtung": {},
	"spot":        {},
	"rollladen":   {},
	"rollo":       {},
	"jalousie":    {},
	"markise":     {},
	"beschattung": {},
	"steckdose":   {},
	"schalter":    {},
	"zwischenstecker": {},
	"ventilator":  {},
	"lüfter":      {},
	"tv":          {},
	"fernseher":   {},
	"radio":       {},
	"lautsprecher": {},
	"player":      {},
	"thermostat":  {},
	"heizung":     {},
	"klimaanlage": {},
}

// DomainArticles maps each entity domain to the definite article used when
// rendering a templated response ("Ich schalte {article} {name} ein.").
var DomainArticles = map[string]string{
	"light":   "das",
	"cover":   "der",
	"switch":  "die",
	"fan":     "der",
	"media_player": "der",
	"sensor":  "der",
	"climate": "das",
}

// VacuumKeywords are the verbs and nouns that route an utterance to the
// vacuum capability.
var VacuumKeywords = []string{
	"staubsauger",
	"saugen",
	"sauge",
	"staubsaugen",
	"staubsauge",
	"wischen",
	"wische",
	"putzen",
	"putze",
	"reinigen",
	"reinige",
	"roboter",
}
