package german

// SelectAllKeywords mark a disambiguation answer as "all of the above"
// ("alle", "beide", ...).
var SelectAllKeywords = map[string]struct{}{
	"alle":   {},
	"alles":  {},
	"beide":  {},
	"beiden": {},
	"beides": {},
}

// SelectNoneKeywords mark a disambiguation answer as "none of the above"
// ("keine", "nichts", ...).
var SelectNoneKeywords = map[string]struct{}{
	"keine":  {},
	"keines": {},
	"keinen": {},
	"nichts": {},
	"nein":   {},
	"nee":    {},
	"keins":  {},
}

// OrdinalWords maps a German ordinal word, in every inflected form, to its
// 1-based numeric value. -1 means "the last one".
var OrdinalWords = map[string]int{
	"erste": 1, "ersten": 1, "erstes": 1, "erster": 1,
	"zweite": 2, "zweiten": 2, "zweites": 2, "zweiter": 2,
	"dritte": 3, "dritten": 3, "drittes": 3, "dritter": 3,
	"vierte": 4, "vierten": 4, "viertes": 4, "vierter": 4,
	"fünfte": 5, "fünften": 5, "fünftes": 5, "fünfter": 5,
	"sechste": 6, "sechsten": 6, "sechstes": 6, "sechster": 6,
	"siebte": 7, "siebten": 7, "siebtes": 7, "siebter": 7,
	"achte": 8, "achten": 8, "achtes": 8, "achter": 8,
	"neunte": 9, "neunten": 9, "neuntes": 9, "neunter": 9,
	"zehnte": 10, "zehnten": 10, "zehntes": 10, "zehnter": 10,
	"letzte": -1, "letzten": -1, "letztes": -1, "letzter": -1,
}
