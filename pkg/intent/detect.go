package intent

import (
	"strings"

	"github.com/kr0ner/multistage-assist/pkg/domainconfig"
	"github.com/kr0ner/multistage-assist/pkg/fuzzy"
)

// typoRatioThreshold is the minimum LevenshteinRatio a mistyped word needs
// to be accepted as a domain keyword. It only ever compares equal-length
// words, so a single substituted letter in a seven-letter word (ratio
// 6/7 ≈ 0.857) clears it comfortably while an unrelated word of the same
// length does not.
const typoRatioThreshold = 0.8

// DetectDomain walks domainconfig.DomainDetectionOrder and returns the
// first domain whose keyword list matches text: climate is checked before
// sensor, so a temperature question does not get shadowed by a thermostat
// command and vice versa. Exact substring matches are tried first; if none
// hit, a length-gated fuzzy pass corrects a single mistyped keyword.
func DetectDomain(text string) (string, bool) {
	lower := strings.ToLower(text)
	if domain, ok := detectExact(lower); ok {
		return domain, true
	}
	return detectFuzzy(lower)
}

func detectExact(lower string) (string, bool) {
	for _, name := range domainconfig.DomainDetectionOrder {
		cfg, ok := domainconfig.Get(name)
		if !ok {
			continue
		}
		for _, kw := range cfg.Keywords {
			if strings.Contains(lower, kw) {
				return name, true
			}
		}
	}
	return "", false
}

func detectFuzzy(lower string) (string, bool) {
	words := strings.Fields(lower)
	for _, name := range domainconfig.DomainDetectionOrder {
		cfg, ok := domainconfig.Get(name)
		if !ok {
			continue
		}
		for _, kw := range cfg.Keywords {
			for _, w := range words {
				if ratio, matched := fuzzy.LevenshteinRatio(w, kw); matched && ratio >= typoRatioThreshold {
					return name, true
				}
			}
		}
	}
	return "", false
}
