package lfpc

import (
	"fmt"
	"strings"
)

// GroupPolicy decides whether a configuration from the same equivalence
// group as the target earns partial credit.
type GroupPolicy string

const (
	// PolicyGroupCredit awards GroupConfigConfidence to same-group shapes.
	PolicyGroupCredit GroupPolicy = "group"
	// PolicyStrict only credits an exact key.
	PolicyStrict GroupPolicy = "strict"
)

// ParseGroupPolicy parses a policy name. An empty name is PolicyGroupCredit.
func ParseGroupPolicy(s string) (GroupPolicy, error) {
	switch GroupPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyGroupCredit:
		return PolicyGroupCredit, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown group policy %q", s)
	}
}

// configurationGroups lists, for each canonical key, the consonant keys that
// share its hand shape.
var configurationGroups = map[string][]string{
	"J": {"J", "P", "D"},
	"K": {"K", "V", "Z"},
	"R": {"R", "S"},
	"B": {"B", "N"},
	"M": {"M", "T", "F"},
	"L": {"L", "CH", "GN", "W"},
	"G": {"G"},
	"Y": {"Y", "NG"},
}

var canonicalKeys = func() map[string]string {
	m := make(map[string]string)
	for canonical, members := range configurationGroups {
		for _, k := range members {
			m[k] = canonical
		}
	}
	return m
}()

func normalizeKey(k string) string {
	return strings.ToUpper(strings.TrimSpace(k))
}

// CanonicalKey returns the canonical key of the group containing k.
func CanonicalKey(k string) (string, bool) {
	c, ok := canonicalKeys[normalizeKey(k)]
	return c, ok
}

// ConfigurationGroup returns a copy of the members of the group containing k.
func ConfigurationGroup(k string) []string {
	c, ok := CanonicalKey(k)
	if !ok {
		return nil
	}
	return append([]string(nil), configurationGroups[c]...)
}

// SameGroup reports whether a and b belong to the same equivalence group.
func SameGroup(a, b string) bool {
	ca, ok := CanonicalKey(a)
	if !ok {
		return false
	}
	cb, ok := CanonicalKey(b)
	return ok && ca == cb
}
