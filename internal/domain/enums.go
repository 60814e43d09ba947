// Package domain defines the core domain models for the assistant platform.
package domain

import "strings"

// Category is the capability bucket a user message is routed to.
type Category string

const (
	CategoryPersonalCalendar     Category = "personal-calendar"
	CategoryProfessionalCalendar Category = "professional-calendar"
	CategoryCalendar             Category = "calendar"
	CategoryGeneralKnowledge     Category = "general-knowledge"
)

// IsCalendar reports whether the category is served by the calendar branch.
func (c Category) IsCalendar() bool {
	switch c {
	case CategoryPersonalCalendar, CategoryProfessionalCalendar, CategoryCalendar:
		return true
	}
	return false
}

// CalendarScope is the event set exposed by the calendar service.
type CalendarScope string

const (
	ScopePersonal     CalendarScope = "personal"
	ScopeProfessional CalendarScope = "professional"
	ScopeAll          CalendarScope = "all"
)

// ParseCalendarScope validates a scope path segment.
func ParseCalendarScope(s string) (CalendarScope, bool) {
	switch CalendarScope(s) {
	case ScopePersonal, ScopeProfessional, ScopeAll:
		return CalendarScope(s), true
	}
	return "", false
}

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	ParamText    ParamType = "text"
	ParamNumber  ParamType = "number"
	ParamDate    ParamType = "date"
	ParamBoolean ParamType = "boolean"
)

// paramAliases maps the Portuguese tags still sent by the settings UI.
var paramAliases = map[string]ParamType{
	"text":     ParamText,
	"texto":    ParamText,
	"number":   ParamNumber,
	"numero":   ParamNumber,
	"número":   ParamNumber,
	"date":     ParamDate,
	"data":     ParamDate,
	"boolean":  ParamBoolean,
	"booleano": ParamBoolean,
}

// ParseParamType normalizes a parameter type tag. Unknown tags return false.
func ParseParamType(s string) (ParamType, bool) {
	t, ok := paramAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// ServiceStatus is the lifecycle state of a generated service.
type ServiceStatus string

const (
	ServiceStatusCreated              ServiceStatus = "created"
	ServiceStatusActive               ServiceStatus = "active"
	ServiceStatusCreatedButNotStarted ServiceStatus = "created_but_not_started"
	ServiceStatusError                ServiceStatus = "error"
	ServiceStatusRemoved              ServiceStatus = "removed"
)

// ParseServiceStatus validates a status reported by the deploy step.
func ParseServiceStatus(s string) (ServiceStatus, bool) {
	switch ServiceStatus(s) {
	case ServiceStatusCreated, ServiceStatusActive, ServiceStatusCreatedButNotStarted, ServiceStatusError:
		return ServiceStatus(s), true
	}
	return "", false
}

// AgentServiceStatus is the binding state stored on an agent record.
type AgentServiceStatus string

const (
	AgentServiceNone     AgentServiceStatus = "none"
	AgentServiceCalendar AgentServiceStatus = "calendar_service"
	AgentServiceCreating AgentServiceStatus = "creating"
	AgentServiceCreated  AgentServiceStatus = "created"
	AgentServiceError    AgentServiceStatus = "error"
)
