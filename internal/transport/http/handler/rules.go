package handler

import (
	"net/http"

	"github.com/go-notify-api/internal/targeting"
)

// RuleHandler exposes the active targeting rule set so operators can confirm
// which version a deployment picked up without reading logs.
type RuleHandler struct {
	rules *targeting.RuleSet
}

func NewRuleHandler(rules *targeting.RuleSet) *RuleHandler {
	return &RuleHandler{rules: rules}
}

func (h *RuleHandler) List(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RuleSetEnvelope{
		Version: h.rules.Version(),
		Rules:   h.rules.Rules(),
	})
}
