package targeting

import "github.com/go-notify-api/internal/domain"

// defaultVersion marks the compiled-in rule set so logs can tell it apart
// from file or S3 overrides.
const defaultVersion = "builtin-1"

// Default returns the compiled-in rule set. It covers the order and project
// statuses the dashboard emits today; deployments override it with
// TARGET_RULES_FILE or TARGET_RULES_S3_KEY without rebuilding.
func Default() *RuleSet {
	rs, err := NewRuleSet(defaultVersion, defaultRules)
	if err != nil {
		// The compiled-in rules are validated by tests; reaching this
		// means the binary itself is broken.
		panic("targeting: invalid built-in rules: " + err.Error())
	}
	return rs
}

var defaultRules = []Rule{
	{
		Domain: DomainOrder, Status: "submitted",
		Type:  "order.submitted",
		Roles: []string{domain.RoleAdmin},
		Title: "Order submitted",
		Body:  "Order {name} is awaiting approval.",
	},
	{
		Domain: DomainOrder, Status: "approved",
		Type:           "order.approved",
		Roles:          []string{domain.RoleSite},
		IncludeCreator: true,
		Title:          "Order approved",
		Body:           "Order {name} has been approved.",
	},
	{
		Domain: DomainOrder, Status: "rejected",
		Type:           "order.rejected",
		Roles:          nil,
		IncludeCreator: true,
		Title:          "Order rejected",
		Body:           "Order {name} was rejected.",
	},
	{
		Domain: DomainOrder, Status: "in_transit",
		Type:  "order.in_transit",
		Roles: []string{domain.RoleSite},
		Title: "Order in transit",
		Body:  "Order {name} is on its way.",
	},
	{
		Domain: DomainOrder, Status: "delivered",
		Type:           "order.delivered",
		Roles:          []string{domain.RoleSite, domain.RoleEngineering},
		IncludeCreator: true,
		Title:          "Order delivered",
		Body:           "Order {name} has been delivered.",
	},
	{
		Domain: DomainOrder, Status: "cancelled",
		Type:           "order.cancelled",
		Roles:          []string{domain.RoleAdmin},
		IncludeCreator: true,
		Title:          "Order cancelled",
		Body:           "Order {name} was cancelled.",
	},
	{
		Domain: DomainProject, Status: "created",
		Type:  "project.created",
		Roles: []string{domain.RoleAdmin, domain.RoleEngineering},
		Title: "New project",
		Body:  "Project {name} has been created.",
	},
	{
		Domain: DomainProject, Status: "active",
		Type:  "project.active",
		Roles: []string{domain.RoleSite, domain.RoleEngineering},
		Title: "Project active",
		Body:  "Project {name} is now active.",
	},
	{
		Domain: DomainProject, Status: "on_hold",
		Type:           "project.on_hold",
		Roles:          []string{domain.RoleAdmin, domain.RoleEngineering},
		IncludeCreator: true,
		Title:          "Project on hold",
		Body:           "Project {name} has been put on hold.",
	},
	{
		Domain: DomainProject, Status: "completed",
		Type:           "project.completed",
		Roles:          []string{domain.RoleAdmin},
		IncludeCreator: true,
		Title:          "Project completed",
		Body:           "Project {name} has been completed.",
	},
}
