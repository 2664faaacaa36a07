package planner

import (
	"path"
	"strings"
)

// A TierRule reports whether a key belongs to its tier. Rules are evaluated
// in order and the first match wins, so more specific rules come first.
type TierRule struct {
	Tier  Tier
	Match func(key string) bool
}

// TierRules builds the rule set for one run. lastPatterns are literal file
// patterns for the last tier.
func TierRules(lastPatterns []string) []TierRule {
	return []TierRule{
		{Tier: TierLast, Match: matchesAnyPattern(lastPatterns)},
		{Tier: TierHTML, Match: isMarkup},
		{Tier: TierDefault, Match: func(string) bool { return true }},
	}
}

// Classify returns the tier of key under rules.
func Classify(key string, rules []TierRule) Tier {
	for _, rule := range rules {
		if rule.Match(key) {
			return rule.Tier
		}
	}
	return TierDefault
}

func matchesAnyPattern(patterns []string) func(string) bool {
	return func(key string) bool {
		base := path.Base(key)
		for _, pattern := range patterns {
			if strings.EqualFold(base, pattern) {
				return true
			}
			if hasSuffixFold(key, "/"+pattern) {
				return true
			}
		}
		return false
	}
}

func isMarkup(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".html", ".htm", ".xml":
		return true
	}
	return false
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
