// Package intent turns a raw utterance into a (domain, intent, slots)
// triple the resolver core can act on.
//
// Domain detection is a first-match walk over domainconfig's static
// keyword tables, with a length-gated fuzzy pass for speech-recognizer
// typos. Once a domain is known, the parser asks the LLM to fill a fixed
// slot schema for it — area, name, domain, floor, device_class, duration —
// constrained to that domain's allowed intent list. Anything the LLM
// returns outside the schema (an unparseable body, an intent the domain
// doesn't support) is treated as a miss, not an error.
package intent
