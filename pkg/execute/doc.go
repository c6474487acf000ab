// Package execute runs a resolved intent + entity-candidate list to
// completion: state filtering, plural-aware disambiguation, dispatch,
// best-effort state verification, confirmation speech, and semantic-cache
// admission. Any resolver stage that has settled on an intent and a
// candidate entity list hands off to this one pipeline instead of
// duplicating that tail end itself.
//
// Grounded on original_source/execution_pipeline.py and
// original_source/capabilities/{command_processor,intent_executor,
// disambiguation,disambiguation_select,plural_detection}.py; the dispatch
// call itself goes through the shared circuit breaker (pkg/resilience)
// instead of a bare call, since the host platform is an external
// collaborator like any other provider.
package execute
