package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kr0ner/multistage-assist/internal/observe"
	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/clients/llm"
	"github.com/kr0ner/multistage-assist/pkg/host"
	"github.com/kr0ner/multistage-assist/pkg/resilience"
	"github.com/kr0ner/multistage-assist/pkg/resolve"
	msgtypes "github.com/kr0ner/multistage-assist/pkg/types"
)

// intentSystemPrompt is INTENT_SYSTEM_PROMPT, kept verbatim except for its
// three format verbs (areas, floors, user input), substituted positionally.
const intentSystemPrompt = `Du bist ein Smart Home Assistent.

Aufgabe: Analysiere die Benutzereingabe und extrahiere den Intent.

Verfügbare Intents:
- HassTurnOn: Einschalten (Licht an, Rollo auf)
- HassTurnOff: Ausschalten (Licht aus, Rollo zu)
- HassLightSet: Helligkeit/Farbe einstellen (Licht dimmen, auf 50%%)
- HassSetPosition: Position setzen (Rollo auf 50%%)
- HassGetState: Status abfragen (Ist das Licht an?)
- HassClimateSetTemperature: Temperatur einstellen (Heizung auf 21 Grad)
- HassTemporaryControl: Zeitlich begrenzt (für 10 Minuten an)
- HassDelayedControl: Verzögert (in 10 Minuten aus)
- HassTimerSet: Timer stellen

Wenn der Benutzer eine allgemeine Frage stellt oder chatten möchte, antworte mit:
{"mode": "chat", "response": "Deine Antwort hier"}

Bei einem Smart Home Befehl, antworte mit:
{"mode": "intent", "intent": "IntentName", "area": "Bereich", "domain": "light/cover/switch/climate", "params": {}}

Verfügbare Bereiche: %s
Verfügbare Etagen: %s

Benutzereingabe: %s
`

// chatSystemPrompt is CHAT_SYSTEM_PROMPT, kept verbatim.
const chatSystemPrompt = `Du bist ein freundlicher Smart Home Assistent.
Antworte kurz und natürlich auf Deutsch (Du-Form).
Der Benutzer möchte plaudern, nicht Geräte steuern.`

// geminiReply is the JSON shape the cloud model answers in, covering both
// of INTENT_SYSTEM_PROMPT's two response modes.
type geminiReply struct {
	Mode     string         `json:"mode"`
	Response string         `json:"response"`
	Intent   string         `json:"intent"`
	Area     string         `json:"area"`
	Floor    string         `json:"floor"`
	Domain   string         `json:"domain"`
	Params   map[string]any `json:"params"`
}

// Stage3 is the cloud fallback: chat replies and last-resort intent
// derivation once the local stages could not resolve an utterance.
//
// Grounded on stage3_gemini.py's Stage3GeminiProcessor; the provider is
// wrapped in a circuit breaker the way [resilience.CircuitBreaker]'s own
// doc comment recommends for an outbound network dependency.
type Stage3 struct {
	provider  llm.Provider
	registry  host.Registry
	resolvers areaFloorEntityResolver
	history   *chatHistory
	breaker   *resilience.CircuitBreaker
}

// NewStage3 constructs a Stage3. provider may be nil, in which case every
// utterance routed here gets a "not configured" spoken error.
func NewStage3(
	provider llm.Provider,
	registry host.Registry,
	areaResolver *resolve.AreaResolver,
	floorResolver *resolve.FloorResolver,
	entityResolver *resolve.EntityResolver,
) *Stage3 {
	return &Stage3{
		provider:  provider,
		registry:  registry,
		resolvers: areaFloorEntityResolver{area: areaResolver, floor: floorResolver, entity: entityResolver},
		history:   newChatHistory(),
		breaker:   resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "cloud-llm"}),
	}
}

// recordCloudCall reports a stage S3 provider call outcome under the
// "status" attribute: "ok" on success, "error" otherwise.
func recordCloudCall(ctx context.Context, kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		observe.DefaultMetrics().RecordProviderError(ctx, "cloud", kind)
	}
	observe.DefaultMetrics().RecordProviderRequest(ctx, "cloud", kind, status)
}

func (s *Stage3) Name() string { return "s3_cloud" }

func (s *Stage3) Process(ctx context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
	if s.provider == nil {
		return types.Error("Entschuldigung, der Cloud-Dienst ist nicht konfiguriert.", u.Text), nil
	}
	if contextBool(prevContext, "chat_mode") {
		return s.handleChat(ctx, u)
	}
	return s.handleIntent(ctx, u, prevContext)
}

func (s *Stage3) handleChat(ctx context.Context, u types.Utterance) (types.StageResult, error) {
	history := s.history.Turns(u.ConversationID)
	messages := make([]msgtypes.Message, 0, len(history)+1)
	for _, t := range history {
		messages = append(messages, msgtypes.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, msgtypes.Message{Role: "user", Content: u.Text})

	var resp *llm.CompletionResponse
	err := s.breaker.Execute(func() error {
		var cerr error
		resp, cerr = s.provider.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: chatSystemPrompt,
			Messages:     messages,
			Temperature:  0.7,
		})
		return cerr
	})
	recordCloudCall(ctx, "chat", err)
	if err != nil || resp == nil {
		return types.Error("Entschuldigung, ein Fehler ist aufgetreten.", u.Text), nil
	}

	s.history.Append(u.ConversationID, u.Text, resp.Content)
	return types.Error(resp.Content, u.Text), nil
}

func (s *Stage3) handleIntent(ctx context.Context, u types.Utterance, prevContext map[string]any) (types.StageResult, error) {
	areaNames := areaDisplayNames(ctx, s.registry)
	floorNames := floorDisplayNames(ctx, s.registry)

	prompt := fmt.Sprintf(intentSystemPrompt, joinOrUnknown(areaNames), joinOrUnknown(floorNames), u.Text)

	var resp *llm.CompletionResponse
	err := s.breaker.Execute(func() error {
		var cerr error
		resp, cerr = s.provider.Complete(ctx, llm.CompletionRequest{
			Messages:    []msgtypes.Message{{Role: "user", Content: prompt}},
			Temperature: 0,
		})
		return cerr
	})
	recordCloudCall(ctx, "intent", err)
	if err != nil || resp == nil {
		return types.Error(fmt.Sprintf("Entschuldigung, ein Fehler ist aufgetreten: %v", err), u.Text), nil
	}

	reply := parseGeminiReply(resp.Content)

	if reply.Mode == "chat" {
		text := reply.Response
		if text == "" {
			text = resp.Content
		}
		return types.Error(text, u.Text), nil
	}

	if reply.Mode == "intent" && reply.Intent != "" {
		ids, _, _, pending, err := s.resolvers.resolveAreaFloorEntities(ctx, u.Text, reply.Area, reply.Floor, "", reply.Domain, reply.Intent)
		if err != nil {
			return types.StageResult{}, err
		}
		if pending != nil {
			return *pending, nil
		}
		params := make(map[string]any, len(reply.Params))
		for k, v := range reply.Params {
			params[k] = v
		}
		escCtx := mergeContext(prevContext, map[string]any{"domain": reply.Domain, "from_gemini": true})
		return types.Success(reply.Intent, ids, params, escCtx, u.Text), nil
	}

	return types.Error("Entschuldigung, ich konnte das nicht verstehen.", u.Text), nil
}

// parseGeminiReply unwraps a markdown code fence if present, then parses
// the JSON body. An unparseable body is treated as a plain chat answer,
// matching stage3_gemini.py's _parse_gemini_response fallback.
func parseGeminiReply(content string) geminiReply {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) >= 2 {
			text = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	var reply geminiReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return geminiReply{Mode: "chat", Response: content}
	}
	return reply
}

func areaDisplayNames(ctx context.Context, registry host.Registry) []string {
	if registry == nil {
		return nil
	}
	areas, err := registry.Areas(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(areas))
	for _, a := range areas {
		names = append(names, a.Name)
	}
	return names
}

func floorDisplayNames(ctx context.Context, registry host.Registry) []string {
	if registry == nil {
		return nil
	}
	floors, err := registry.Floors(ctx)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(floors))
	for _, f := range floors {
		names = append(names, f.Name)
	}
	return names
}

func joinOrUnknown(names []string) string {
	if len(names) == 0 {
		return "Keine bekannt"
	}
	return strings.Join(names, ", ")
}
