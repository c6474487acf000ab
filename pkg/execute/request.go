package execute

import (
	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

// Request is everything a resolver stage has already settled on before
// handing off to the pipeline: an intent, a domain, and the candidate
// entities it resolved the utterance to (state filtering and
// disambiguation still happen here, not upstream).
type Request struct {
	Utterance  types.Utterance
	Intent     string
	Domain     string
	Candidates []host.Entity
	Slots      map[string]any

	// RequiredDisambiguation, when true, skips the plural check and always
	// asks whenever more than one candidate survives state filtering — used by stages that already know the match
	// was ambiguous (e.g. a fuzzy name match with multiple equal scores).
	RequiredDisambiguation bool

	// UsedRelativeStep marks a step_up/step_down resolution: never cached,
	// see [github.com/kr0ner/multistage-assist/pkg/semcache.StoreParams].
	UsedRelativeStep bool

	// FromCache marks a resolution replayed from the semantic cache; it is
	// never re-admitted to the cache it came from.
	FromCache bool
}

// Result is the pipeline's outcome: either a finished spoken reply, or
// another turn needed from the user (disambiguation).
type Result struct {
	Speech  string
	Pending *types.PendingData
}

func done(speech string) Result { return Result{Speech: speech} }
