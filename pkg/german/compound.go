package german

import "strings"

// CompoundSeparators mark an utterance as carrying more than one command
// ("mach das Licht an, und schließ die Rollläden"). Callers that admit
// verified resolutions into long-lived storage (the semantic cache) or that
// decide whether to attempt a single-shot resolution (stage S1) both need
// the same answer to "is this one command or several", so the list lives
// here instead of being duplicated per caller.
var CompoundSeparators = []string{",", " und ", " oder ", " dann "}

// IsCompoundCommand reports whether text contains one of [CompoundSeparators].
func IsCompoundCommand(text string) bool {
	for _, sep := range CompoundSeparators {
		if strings.Contains(text, sep) {
			return true
		}
	}
	return false
}
