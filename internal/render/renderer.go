// Package render turns a service generation request into the source,
// module manifest and container descriptor of a standalone HTTP service.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"regexp"
	"strings"
	"text/template"
	"unicode"

	"github.com/xiaot623/assistant/internal/domain"
)

// File names of the rendered artifacts inside a service directory.
const (
	SourceFile    = "main.go"
	ManifestFile  = "go.mod"
	ContainerFile = "Dockerfile"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

var (
	paramNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	apiPathPattern   = regexp.MustCompile(`^(/[A-Za-z0-9._~-]+)+$`)
)

// Artifacts is the rendered content of one generated service.
type Artifacts struct {
	Source              []byte
	Manifest            []byte
	ContainerDescriptor []byte
}

// Files maps artifact file names to their content.
func (a *Artifacts) Files() map[string][]byte {
	return map[string][]byte{
		SourceFile:    a.Source,
		ManifestFile:  a.Manifest,
		ContainerFile: a.ContainerDescriptor,
	}
}

type fieldData struct {
	GoName   string
	GoType   string
	JSONName string
	Validate string
}

type toolData struct {
	Name           string
	Description    string
	Path           string
	TypeName       string
	HandlerName    string
	MockFunc       string
	SuccessMessage string
	Fields         []fieldData
}

type serviceData struct {
	ServiceName string
	AgentName   string
	Port        int
	Tools       []toolData
	Mocks       []string
}

// Validate rejects requests that cannot be rendered into a working service.
// It runs before anything is allocated or written.
func Validate(req *domain.ServiceGenerationRequest) error {
	_, err := buildTools(req)
	return err
}

// Paths returns the API paths declared by the request's tools, in order.
func Paths(req *domain.ServiceGenerationRequest) []string {
	paths := make([]string, 0, len(req.Tools))
	for _, t := range req.Tools {
		paths = append(paths, strings.TrimSpace(t.APIEndpoint))
	}
	return paths
}

// Render produces the artifacts for a validated request. Identical inputs
// always produce identical output.
func Render(req *domain.ServiceGenerationRequest, serviceName string, port int) (*Artifacts, error) {
	if serviceName == "" {
		return nil, domain.Validationf("service name is required")
	}
	if port <= 0 || port > 65535 {
		return nil, domain.Validationf("invalid port %d", port)
	}
	tools, err := buildTools(req)
	if err != nil {
		return nil, err
	}

	data := serviceData{
		ServiceName: serviceName,
		AgentName:   req.AgentName,
		Port:        port,
		Tools:       tools,
		Mocks:       mockKinds(tools),
	}

	source, err := execute("main.go.tmpl", data)
	if err != nil {
		return nil, err
	}
	source, err = format.Source(source)
	if err != nil {
		return nil, fmt.Errorf("failed to format generated source: %w", err)
	}
	manifest, err := execute("go.mod.tmpl", data)
	if err != nil {
		return nil, err
	}
	dockerfile, err := execute("Dockerfile.tmpl", data)
	if err != nil {
		return nil, err
	}

	return &Artifacts{
		Source:              source,
		Manifest:            manifest,
		ContainerDescriptor: dockerfile,
	}, nil
}

func execute(name string, data serviceData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func buildTools(req *domain.ServiceGenerationRequest) ([]toolData, error) {
	if req == nil {
		return nil, domain.Validationf("request is required")
	}
	if strings.TrimSpace(req.AgentName) == "" {
		return nil, domain.Validationf("agent name is required")
	}
	if len(req.Tools) == 0 {
		return nil, domain.Validationf("at least one tool is required")
	}

	idents := make(map[string]bool, len(req.Tools))
	paths := make(map[string]bool, len(req.Tools))
	tools := make([]toolData, 0, len(req.Tools))
	for i, t := range req.Tools {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, domain.Validationf("tool %d has no name", i)
		}
		if strings.IndexFunc(name, unicode.IsControl) >= 0 {
			return nil, domain.Validationf("tool name %q contains control characters", name)
		}
		ident := exportedIdent(name)
		if ident == "" {
			return nil, domain.Validationf("tool name %q has no usable characters", name)
		}
		if idents[ident] {
			return nil, domain.Validationf("duplicate tool name %q", name)
		}
		idents[ident] = true

		path := strings.TrimSpace(t.APIEndpoint)
		if !apiPathPattern.MatchString(path) {
			return nil, domain.Validationf("tool %q has invalid api path %q", name, t.APIEndpoint)
		}
		if paths[path] {
			return nil, domain.Validationf("duplicate api path %q", path)
		}
		paths[path] = true

		fields, err := buildFields(name, t.Parameters)
		if err != nil {
			return nil, err
		}

		description := singleLine(t.Description)
		message := description
		if message == "" {
			message = name
		}
		tools = append(tools, toolData{
			Name:           name,
			Description:    description,
			Path:           path,
			TypeName:       ident + "Request",
			HandlerName:    "handle" + ident,
			MockFunc:       mockFunc(mockKind(name)),
			SuccessMessage: message + " executed successfully",
			Fields:         fields,
		})
	}
	return tools, nil
}

func buildFields(tool string, params []domain.Parameter) ([]fieldData, error) {
	seen := make(map[string]bool, len(params))
	fields := make([]fieldData, 0, len(params))
	for _, p := range params {
		if !paramNamePattern.MatchString(p.Name) {
			return nil, domain.Validationf("tool %q has invalid parameter name %q", tool, p.Name)
		}
		goName := exportedIdent(p.Name)
		if goName == "" || seen[goName] {
			return nil, domain.Validationf("tool %q has duplicate parameter %q", tool, p.Name)
		}
		seen[goName] = true

		typ, ok := domain.ParseParamType(p.Type)
		if !ok {
			return nil, domain.Validationf("tool %q parameter %q has unknown type %q", tool, p.Name, p.Type)
		}
		f := fieldData{GoName: goName, JSONName: p.Name}
		switch typ {
		case domain.ParamText:
			f.GoType, f.Validate = "string", "required"
		case domain.ParamNumber:
			f.GoType = "float64"
		case domain.ParamDate:
			f.GoType, f.Validate = "string", "required,datetime=2006-01-02"
		case domain.ParamBoolean:
			f.GoType = "bool"
		}
		fields = append(fields, f)
	}
	return fields, nil
}

const (
	mockHotel      = "hotel"
	mockFlight     = "flight"
	mockRestaurant = "restaurant"
	mockGeneric    = "generic"
)

func mockKind(toolName string) string {
	name := strings.ToLower(toolName)
	switch {
	case strings.Contains(name, "hotel"), strings.Contains(name, "hoteis"), strings.Contains(name, "hotéis"):
		return mockHotel
	case strings.Contains(name, "voo"), strings.Contains(name, "flight"):
		return mockFlight
	case strings.Contains(name, "restaurant"):
		return mockRestaurant
	default:
		return mockGeneric
	}
}

func mockFunc(kind string) string {
	switch kind {
	case mockHotel:
		return "mockHotels"
	case mockFlight:
		return "mockFlights"
	case mockRestaurant:
		return "mockRestaurants"
	default:
		return "mockResults"
	}
}

// mockKinds lists the placeholder generators the tools need, in a fixed order.
func mockKinds(tools []toolData) []string {
	used := make(map[string]bool)
	for _, t := range tools {
		used[t.MockFunc] = true
	}
	var kinds []string
	for _, kind := range []string{mockHotel, mockFlight, mockRestaurant, mockGeneric} {
		if used[mockFunc(kind)] {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// exportedIdent converts a free-form name into an exported Go identifier.
func exportedIdent(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	id := b.String()
	if id == "" {
		return ""
	}
	if first := []rune(id)[0]; unicode.IsDigit(first) {
		id = "Tool" + id
	}
	return id
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
