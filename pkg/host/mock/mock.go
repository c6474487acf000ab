// Package mock provides in-memory test doubles for the pkg/host interfaces.
//
// Each mock records every method call for assertion in tests and exposes
// exported fields that control what it returns. All mocks are safe for
// concurrent use via an internal [sync.Mutex].
//
// Typical usage:
//
//	reg := &mock.Registry{EntitiesResult: []host.Entity{{ID: "light.kuche", Area: "Küche"}}}
//
//	// inject reg into the system under test …
//
//	if got := reg.CallCount("Entities"); got != 1 {
//	    t.Errorf("expected 1 Entities call, got %d", got)
//	}
package mock

import (
	"context"
	"sync"

	"github.com/kr0ner/multistage-assist/pkg/host"
)

// Call records the name and arguments of a single method invocation.
type Call struct {
	Method string
	Args   []any
}

// ─────────────────────────────────────────────────────────────────────────────
// Registry mock
// ─────────────────────────────────────────────────────────────────────────────

// Registry is a configurable test double for [host.Registry].
type Registry struct {
	mu sync.Mutex

	calls []Call

	AreasResult  []host.Area
	AreasErr     error
	FloorsResult []host.Floor
	FloorsErr    error

	EntitiesResult []host.Entity
	EntitiesErr    error

	// EntityByID is consulted by [Registry.Entity] and [Registry.State].
	// When nil for a given ID, Entity returns (nil, nil) and State returns
	// ("", nil).
	EntityByID map[string]host.Entity
	EntityErr  error
	StateErr   error
}

func (m *Registry) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Args: args})
}

// Calls returns every recorded invocation in order.
func (m *Registry) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallCount returns how many times the named method was invoked.
func (m *Registry) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears the recorded call history.
func (m *Registry) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *Registry) Areas(_ context.Context) ([]host.Area, error) {
	m.record("Areas")
	return m.AreasResult, m.AreasErr
}

func (m *Registry) Floors(_ context.Context) ([]host.Floor, error) {
	m.record("Floors")
	return m.FloorsResult, m.FloorsErr
}

func (m *Registry) Entities(_ context.Context) ([]host.Entity, error) {
	m.record("Entities")
	return m.EntitiesResult, m.EntitiesErr
}

func (m *Registry) Entity(_ context.Context, id string) (*host.Entity, error) {
	m.record("Entity", id)
	if m.EntityErr != nil {
		return nil, m.EntityErr
	}
	if e, ok := m.EntityByID[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *Registry) State(_ context.Context, id string) (string, error) {
	m.record("State", id)
	if m.StateErr != nil {
		return "", m.StateErr
	}
	if e, ok := m.EntityByID[id]; ok {
		return e.State, nil
	}
	return "", nil
}

// ─────────────────────────────────────────────────────────────────────────────
// IntentDispatcher mock
// ─────────────────────────────────────────────────────────────────────────────

// IntentDispatcher is a configurable test double for [host.IntentDispatcher].
type IntentDispatcher struct {
	mu sync.Mutex

	calls []Call

	// DispatchResult is returned for every call when DispatchFunc is nil.
	DispatchResult host.IntentResult
	DispatchErr    error

	// DispatchFunc, when set, overrides DispatchResult/DispatchErr and lets
	// a test vary behavior per entity (e.g. one entity unavailable).
	DispatchFunc func(intentName, entityID string, slots map[string]any) (host.IntentResult, error)
}

func (m *IntentDispatcher) record(method string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Args: args})
}

func (m *IntentDispatcher) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *IntentDispatcher) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *IntentDispatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *IntentDispatcher) Dispatch(_ context.Context, intentName, entityID string, slots map[string]any) (host.IntentResult, error) {
	m.record("Dispatch", intentName, entityID, slots)
	if m.DispatchFunc != nil {
		return m.DispatchFunc(intentName, entityID, slots)
	}
	return m.DispatchResult, m.DispatchErr
}

// ─────────────────────────────────────────────────────────────────────────────
// ServiceCaller mock
// ─────────────────────────────────────────────────────────────────────────────

// ServiceCaller is a configurable test double for [host.ServiceCaller].
type ServiceCaller struct {
	mu sync.Mutex

	calls []Call

	CallErr error
}

func (m *ServiceCaller) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *ServiceCaller) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *ServiceCaller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *ServiceCaller) Call(_ context.Context, domain, service string, data map[string]any) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: "Call", Args: []any{domain, service, data}})
	m.mu.Unlock()
	return m.CallErr
}

// ─────────────────────────────────────────────────────────────────────────────
// DefaultAgent mock
// ─────────────────────────────────────────────────────────────────────────────

// DefaultAgent is a configurable test double for [host.DefaultAgent].
type DefaultAgent struct {
	mu sync.Mutex

	calls []Call

	ConverseResult string
	ConverseErr    error
}

func (m *DefaultAgent) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *DefaultAgent) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *DefaultAgent) Converse(_ context.Context, text, conversationID string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: "Converse", Args: []any{text, conversationID}})
	m.mu.Unlock()
	return m.ConverseResult, m.ConverseErr
}

// ─────────────────────────────────────────────────────────────────────────────
// NotifyServices mock
// ─────────────────────────────────────────────────────────────────────────────

// NotifyServices is a configurable test double for [host.NotifyServices].
type NotifyServices struct {
	mu sync.Mutex

	calls []Call

	TargetsResult []host.NotifyTarget
	TargetsErr    error
	SendErr       error
}

func (m *NotifyServices) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *NotifyServices) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *NotifyServices) Targets(_ context.Context) ([]host.NotifyTarget, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: "Targets"})
	m.mu.Unlock()
	return m.TargetsResult, m.TargetsErr
}

func (m *NotifyServices) Send(_ context.Context, serviceName, message string, data map[string]any) error {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: "Send", Args: []any{serviceName, message, data}})
	m.mu.Unlock()
	return m.SendErr
}

// ─────────────────────────────────────────────────────────────────────────────
// NLUProbe mock
// ─────────────────────────────────────────────────────────────────────────────

// NLUProbe is a configurable test double for [host.NLUProbe].
type NLUProbe struct {
	mu sync.Mutex

	calls []Call

	RecognizeResult *host.NLUMatch
	RecognizeErr    error
}

func (m *NLUProbe) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *NLUProbe) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *NLUProbe) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *NLUProbe) Recognize(_ context.Context, text, language string) (*host.NLUMatch, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Method: "Recognize", Args: []any{text, language}})
	m.mu.Unlock()
	return m.RecognizeResult, m.RecognizeErr
}
