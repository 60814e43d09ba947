// Package policy evaluates the service-registry rules with OPA.
package policy

import (
	"context"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/rego"
)

// Action names the registry operation being evaluated.
type Action string

const (
	ActionCreate Action = "create"
	ActionRemove Action = "remove"
)

// Input is the document the policy is evaluated against.
type Input struct {
	Action Action `json:"action"`
	// Endpoints requested by a create.
	Endpoints []string `json:"endpoints,omitempty"`
	// Service is the record targeted by a remove.
	Service *ServiceInput `json:"service,omitempty"`
}

// ServiceInput is the subset of a registry record the policy inspects.
type ServiceInput struct {
	Name         string   `json:"name"`
	DefaultAgent bool     `json:"default_agent"`
	Endpoints    []string `json:"endpoints"`
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reasons []string
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.service_policy.deny"),
		rego.Module("service_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}
	return &Engine{query: query}, nil
}

// Evaluate collects the deny reasons for the input.
// An empty deny set means the action is allowed.
func (e *Engine) Evaluate(ctx context.Context, input Input) (Decision, error) {
	doc := map[string]interface{}{
		"action":    string(input.Action),
		"endpoints": nonNil(input.Endpoints),
	}
	if input.Service != nil {
		doc["service"] = map[string]interface{}{
			"name":          input.Service.Name,
			"default_agent": input.Service.DefaultAgent,
			"endpoints":     nonNil(input.Service.Endpoints),
		}
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(doc))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to evaluate policy: %w", err)
	}

	var reasons []string
	if len(results) > 0 && len(results[0].Expressions) > 0 {
		if set, ok := results[0].Expressions[0].Value.([]interface{}); ok {
			for _, v := range set {
				if s, ok := v.(string); ok {
					reasons = append(reasons, s)
				}
			}
		}
	}
	sort.Strings(reasons)
	return Decision{Allowed: len(reasons) == 0, Reasons: reasons}, nil
}

func nonNil(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// DefaultPolicy protects default-agent services and the calendar namespace.
const DefaultPolicy = `
package service_policy

import rego.v1

calendar_prefix := "/api/calendar/"

reserved_paths := {"/", "/health", "/metrics"}

deny contains "service is bound to a default agent" if {
	input.action == "remove"
	input.service.default_agent == true
}

deny contains msg if {
	input.action == "remove"
	some path in input.service.endpoints
	startswith(path, calendar_prefix)
	msg := sprintf("service exposes built-in calendar endpoint %s", [path])
}

deny contains msg if {
	input.action == "create"
	some path in input.endpoints
	reserved_paths[path]
	msg := sprintf("api path %s is reserved", [path])
}

deny contains msg if {
	input.action == "create"
	some path in input.endpoints
	startswith(path, calendar_prefix)
	msg := sprintf("api path %s belongs to the calendar service", [path])
}
`
