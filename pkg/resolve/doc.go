// Package resolve turns the slot-like fragments a keyword or LLM parser
// extracts from an utterance — a location string, a device name, a domain —
// into the registry IDs the execution pipeline actually dispatches against.
//
// AreaResolver and FloorResolver share one cascade shape (learned alias →
// exact name, registry alias or substring match → LLM fallback).
// EntityResolver collects entities by area/floor and by name, preferring a
// learned entity alias; it has no LLM tier. None of them mutate state;
// callers persist a learned
// alias back through pkg/aliasstore once a pending continuation confirms
// it.
package resolve
