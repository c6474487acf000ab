// Package host defines the narrow interfaces the resolver core uses to talk
// to the smart-home automation platform it runs inside. The platform itself
// — area/floor/entity registries, intent dispatch, service calls,
// conversation transport — is an external collaborator; this package
// specifies only what the core consumes from it, one interface per
// collaborator, mirroring how the embedding and LLM clients are each a
// single-purpose provider interface.
package host

import "context"

// Entity is the registry's read-only view of one device/sensor.
type Entity struct {
	ID          string
	Name        string
	Area        string
	Floor       string
	Domain      string
	DeviceClass string
	State       string
	Attributes  map[string]any
}

// Area is a room or zone known to the registry.
type Area struct {
	Name    string
	Floor   string
	Aliases []string
}

// Floor is a building level known to the registry.
type Floor struct {
	Name    string
	Aliases []string
}

// Registry is a read-only view of the host platform's areas, floors,
// entities, and their current states. Resolvers never mutate it; state
// changes happen through [IntentDispatcher] and are observed back through
// Registry on the next read.
type Registry interface {
	// Areas returns every area known to the platform.
	Areas(ctx context.Context) ([]Area, error)

	// Floors returns every floor known to the platform.
	Floors(ctx context.Context) ([]Floor, error)

	// Entities returns every entity known to the platform. Callers filter
	// client-side; the registry performs no server-side query.
	Entities(ctx context.Context) ([]Entity, error)

	// Entity returns a single entity by ID. Returns (nil, nil) when the ID
	// is unknown rather than an error.
	Entity(ctx context.Context, id string) (*Entity, error)

	// State returns the current state string for an entity ID ("on",
	// "off", "closed", "unavailable", ...).
	State(ctx context.Context, id string) (string, error)
}

// IntentResult is the outcome of dispatching one intent to one entity.
type IntentResult struct {
	EntityID string
	Speech   string
	Err      error
}

// IntentDispatcher sends a resolved intent and slot map to the host
// platform's intent handler for one entity and reports what happened.
// Implementations own the transport (HTTP, WebSocket, in-process call) to
// the platform; the resolver core only ever sees this interface.
type IntentDispatcher interface {
	// Dispatch invokes intentName against entityID with slots and returns
	// the result. The returned error is non-nil only when the handler
	// itself failed (not when the entity was merely unavailable — that is
	// reported via IntentResult.Err so callers can distinguish "nothing to
	// do" from "transport failure").
	Dispatch(ctx context.Context, intentName string, entityID string, slots map[string]any) (IntentResult, error)
}

// ServiceCaller invokes an arbitrary host-platform service by domain and
// service name, outside the intent-handler path (used by capabilities like
// Vacuum and Calendar that call a script or a calendar-create service
// directly rather than going through intent dispatch).
type ServiceCaller interface {
	Call(ctx context.Context, domain, service string, data map[string]any) error
}

// DefaultAgent is the conversation agent the host platform would fall back
// to for utterances this resolver declines to handle in chat mode
// (escalate_chat). Implementations typically proxy to the platform's
// built-in default conversation agent.
type DefaultAgent interface {
	Converse(ctx context.Context, text string, conversationID string) (reply string, err error)
}

// NotifyTarget is one destination the timer capability can fire a
// notification command at — typically a mobile-app notify service.
type NotifyTarget struct {
	ServiceName string
	DisplayName string
}

// NotifyServices enumerates the notify targets available on the host
// platform and sends a message to one of them.
type NotifyServices interface {
	// Targets returns every notify target the timer capability may offer
	// for fuzzy matching against a user-named device.
	Targets(ctx context.Context) ([]NotifyTarget, error)

	// Send delivers message to the named notify target.
	Send(ctx context.Context, serviceName string, message string, data map[string]any) error
}

// NLUMatch is the outcome of a rule-based recognizer match: an intent name
// plus whatever slot strings the grammar captured (e.g. "name": "Küche").
type NLUMatch struct {
	Intent string
	Slots  map[string]string
}

// NLUProbe is the host platform's own rule-based intent recognizer (sentence
// templates matched offline, no model call). Stage S0 uses it to short-circuit
// the pipeline for an utterance the platform already understands well enough
// on its own, before anything more expensive gets involved.
type NLUProbe interface {
	// Recognize returns the best rule-based match for text, or (nil, nil)
	// when nothing in the platform's grammar matches.
	Recognize(ctx context.Context, text, language string) (*NLUMatch, error)
}
