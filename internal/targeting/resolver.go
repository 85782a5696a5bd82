package targeting

import "strings"

// Event is a status change reported by the orders or projects flow.
type Event struct {
	Domain      string
	Status      string
	EntityID    string
	EntityName  string
	OldStatus   string
	ActorUserID string
	ActorRole   string
}

// Resolution is the recipient set and message for one event. Roles are
// expanded to concrete users by the dispatcher; ExplicitUserIDs are added
// as-is on top of that expansion.
type Resolution struct {
	Type            string
	Title           string
	Body            string
	Roles           []string
	ExplicitUserIDs []string
}

// Resolve maps an event to its notification, or reports false when no rule
// covers the (domain, status) pair. Unmapped statuses are a normal outcome,
// not an error.
//
// When the matched rule sets include_creator, the acting user is added as an
// explicit recipient unless their role is already targeted, so nobody is
// notified twice for the same event.
func (rs *RuleSet) Resolve(ev Event) (Resolution, bool) {
	rule, ok := rs.lookup(ev.Domain, ev.Status)
	if !ok {
		return Resolution{}, false
	}

	res := Resolution{
		Type:  rule.Type,
		Title: interpolate(rule.Title, ev),
		Body:  interpolate(rule.Body, ev),
		Roles: append([]string(nil), rule.Roles...),
	}
	if rule.IncludeCreator && ev.ActorUserID != "" && !containsRole(rule.Roles, ev.ActorRole) {
		res.ExplicitUserIDs = []string{ev.ActorUserID}
	}
	return res, true
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// interpolate fills the placeholders a template may carry. {name} is the
// entity's display name; {status} and {old_status} are the raw status values.
func interpolate(tmpl string, ev Event) string {
	r := strings.NewReplacer(
		"{name}", ev.EntityName,
		"{status}", ev.Status,
		"{old_status}", ev.OldStatus,
	)
	return r.Replace(tmpl)
}
