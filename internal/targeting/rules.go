package targeting

import (
	"fmt"
	"sort"

	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/pkg/validate"
)

// Event domains a rule can bind to.
const (
	DomainOrder   = "order"
	DomainProject = "project"
)

// Rule associates one (domain, status) pair with the recipients and message of
// the notification it produces. Rules are configuration data: they are loaded
// at startup and never consulted for anything but lookup, so new statuses ship
// without code changes.
type Rule struct {
	Domain         string   `json:"domain" validate:"required,oneof=order project"`
	Status         string   `json:"status" validate:"required"`
	Type           string   `json:"type" validate:"required"`
	Roles          []string `json:"roles"`
	IncludeCreator bool     `json:"include_creator"`
	Title          string   `json:"title" validate:"required"`
	Body           string   `json:"body" validate:"required"`
}

type ruleKey struct {
	domain, status string
}

// RuleSet is an immutable, versioned lookup table of rules. Construct with
// NewRuleSet (or the loader functions); the zero value matches nothing.
type RuleSet struct {
	version string
	rules   map[ruleKey]Rule
}

// NewRuleSet validates the rules and indexes them by (domain, status).
// Duplicate pairs, unknown domains or roles, and empty templates are rejected.
func NewRuleSet(version string, rules []Rule) (*RuleSet, error) {
	indexed := make(map[ruleKey]Rule, len(rules))
	for i, r := range rules {
		if err := validate.Struct(r); err != nil {
			return nil, fmt.Errorf("rule %d (%s/%s): %w", i, r.Domain, r.Status, err)
		}
		for _, role := range r.Roles {
			if !domain.KnownRole(role) {
				return nil, fmt.Errorf("rule %d (%s/%s): unknown role %q", i, r.Domain, r.Status, role)
			}
		}
		key := ruleKey{r.Domain, r.Status}
		if _, dup := indexed[key]; dup {
			return nil, fmt.Errorf("rule %d: duplicate mapping for %s/%s", i, r.Domain, r.Status)
		}
		indexed[key] = r
	}
	return &RuleSet{version: version, rules: indexed}, nil
}

// Version returns the rule set's version label, for startup logging.
func (rs *RuleSet) Version() string { return rs.version }

// Len returns the number of mapped (domain, status) pairs.
func (rs *RuleSet) Len() int { return len(rs.rules) }

// Rules returns the mappings ordered by domain then status, so the admin
// inspection endpoint renders them deterministically.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, 0, len(rs.rules))
	for _, r := range rs.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Domain != out[j].Domain {
			return out[i].Domain < out[j].Domain
		}
		return out[i].Status < out[j].Status
	})
	return out
}

func (rs *RuleSet) lookup(eventDomain, status string) (Rule, bool) {
	r, ok := rs.rules[ruleKey{eventDomain, status}]
	return r, ok
}
