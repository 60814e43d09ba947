package domain

import "time"

// Message is a single user utterance routed through the orchestrator.
type Message struct {
	Text   string `json:"message"`
	UserID string `json:"userId"`
}

// DispatchResult is the uniform response produced for every message.
type DispatchResult struct {
	Response   string        `json:"response"`
	AgentUsed  string        `json:"agentUsed"`
	ShowCanvas bool          `json:"showCanvas"`
	CanvasKind CalendarScope `json:"canvasKind,omitempty"`
}

// Parameter is a typed input of a tool.
type Parameter struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// ToolSpec declares one callable operation a generated service exposes.
type ToolSpec struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	APIEndpoint string      `json:"apiEndpoint" yaml:"apiEndpoint"`
	Parameters  []Parameter `json:"parameters" yaml:"parameters"`
}

// ServiceGenerationRequest is the input of the tool-factory pipeline.
type ServiceGenerationRequest struct {
	AgentName string     `json:"agentName" yaml:"agentName"`
	AgentType string     `json:"agentType" yaml:"agentType"`
	Tools     []ToolSpec `json:"tools" yaml:"tools"`
	// AgentID links the service to a stored agent. Whether that agent is a
	// default one is looked up by the tool factory, never taken from the caller.
	AgentID string `json:"agentId,omitempty" yaml:"agentId,omitempty"`
}

// ServiceRecord is a registry entry for a generated service.
type ServiceRecord struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	AgentName    string        `json:"agentName"`
	AgentID      string        `json:"agentId,omitempty"`
	DefaultAgent bool          `json:"defaultAgent"`
	Port         int           `json:"port"`
	Path         string        `json:"path"`
	Endpoints    []string      `json:"endpoints"`
	Status       ServiceStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// CreateServiceResponse is returned by POST /create-service.
type CreateServiceResponse struct {
	Message      string        `json:"message"`
	ServiceID    string        `json:"serviceId"`
	ServiceName  string        `json:"serviceName"`
	Port         int           `json:"port"`
	Status       ServiceStatus `json:"status"`
	Endpoints    []string      `json:"endpoints"`
	ServicePath  string        `json:"servicePath"`
	ToolsCreated int           `json:"toolsCreated"`
}

// Agent is a configured assistant persona owned by the settings service.
type Agent struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Type          string             `json:"type"`
	SystemPrompt  string             `json:"systemPrompt"`
	Tools         []ToolSpec         `json:"tools"`
	IsDefault     bool               `json:"isDefault"`
	ServiceID     string             `json:"serviceId,omitempty"`
	ServiceStatus AgentServiceStatus `json:"serviceStatus"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// Event is a calendar entry.
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Color    string `json:"color"`
	Category string `json:"category"`
}
