package hub

import "time"

// AuthorizationRule is a named credential scoped to a capability set.
type AuthorizationRule struct {
	KeyName      string
	PrimaryKey   string
	SecondaryKey string
	Rights       Rights
	Created      time.Time
	Modified     time.Time
}

// RuleSet holds the authorization rules of a single hub, keyed by rule
// name, preserving insertion order. It is not synchronized: callers
// sharing a rule set coordinate through Description.SetAccessPassword.
type RuleSet struct {
	rules []*AuthorizationRule
}

func (rs *RuleSet) Get(keyName string) (r *AuthorizationRule, found bool) {
	for _, candidate := range rs.rules {
		if candidate.KeyName == keyName {
			r, found = candidate, true
			break
		}
	}
	return
}

// Upsert overwrites the rule with the same key name in place, or appends.
func (rs *RuleSet) Upsert(r *AuthorizationRule) {
	for i, existing := range rs.rules {
		if existing.KeyName == r.KeyName {
			rs.rules[i] = r
			return
		}
	}
	rs.rules = append(rs.rules, r)
}

func (rs *RuleSet) All() (rules []*AuthorizationRule) {
	rules = make([]*AuthorizationRule, len(rs.rules))
	copy(rules, rs.rules)
	return
}

func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

func (rs *RuleSet) clone() (c *RuleSet) {
	c = &RuleSet{}
	for _, r := range rs.rules {
		rc := *r
		c.rules = append(c.rules, &rc)
	}
	return
}
