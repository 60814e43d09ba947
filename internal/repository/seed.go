package repository

import "github.com/xiaot623/assistant/internal/domain"

// Identifiers of the seeded default agents.
const (
	PersonalCalendarAgentID     = "personal-calendar"
	ProfessionalCalendarAgentID = "professional-calendar"
	GeneralAssistantAgentID     = "general-assistant"
)

// DefaultAgents returns the agents every fresh database starts with.
func DefaultAgents() []domain.Agent {
	rangeParams := []domain.Parameter{
		{Name: "start_date", Type: string(domain.ParamDate)},
		{Name: "end_date", Type: string(domain.ParamDate)},
	}
	return []domain.Agent{
		{
			ID:           PersonalCalendarAgentID,
			Name:         "Personal Calendar",
			Type:         "personal",
			SystemPrompt: "You are a personal agenda assistant. Help with personal appointments, family events and leisure activities.",
			Tools: []domain.ToolSpec{{
				Name:        "query_personal_agenda",
				Description: "Looks up events in the user's personal agenda",
				APIEndpoint: "/api/calendar/personal",
				Parameters:  rangeParams,
			}},
			IsDefault:     true,
			ServiceStatus: domain.AgentServiceCalendar,
		},
		{
			ID:           ProfessionalCalendarAgentID,
			Name:         "Professional Calendar",
			Type:         "professional",
			SystemPrompt: "You are a professional agenda assistant. Help with meetings, projects and work commitments.",
			Tools: []domain.ToolSpec{{
				Name:        "query_professional_agenda",
				Description: "Looks up events in the user's professional agenda",
				APIEndpoint: "/api/calendar/professional",
				Parameters:  rangeParams,
			}},
			IsDefault:     true,
			ServiceStatus: domain.AgentServiceCalendar,
		},
		{
			ID:            GeneralAssistantAgentID,
			Name:          "General Assistant",
			Type:          "general",
			SystemPrompt:  "You are a helpful personal assistant. Answer clearly and concisely.",
			Tools:         []domain.ToolSpec{},
			IsDefault:     true,
			ServiceStatus: domain.AgentServiceNone,
		},
	}
}
