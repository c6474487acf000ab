// Package stepctl resolves a relative adjustment ("heller", "wärmer",
// "leiser") against an entity's current state into a concrete
// attribute/value pair the execution pipeline can dispatch.
//
// Results are never cached: a step is relative to whatever value the
// entity happens to hold at the moment the command runs, so the same
// utterance legitimately produces a different Result every time it fires.
package stepctl
