// Package orchestrator drives one utterance through the cascading resolver
// stages (S0 rule-based probe, S1 semantic cache, S2 local LLM, S3 cloud
// LLM), manages pending multi-turn state per conversation, and hands a
// resolved intent off to the execution pipeline.
//
// Concurrency safety comes from a sync.RWMutex-guarded map of conversation
// ID to pending record, configured through functional options. A
// multi-command result runs each of its atomic commands back through the
// same cascade.
package orchestrator
