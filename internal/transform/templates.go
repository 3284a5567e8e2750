package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// TemplateRegistry manages built-in what-if templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []AssetTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(name)]
	return t, ok
}

// List returns all registered template names, sorted
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// steps expands n single-month adjustments of one phase
func steps(phaseID string, n int) []AssetTransform {
	step := 1
	if n < 0 {
		step, n = -1, -n
	}
	out := make([]AssetTransform, n)
	for i := range out {
		out[i] = &AdjustPhase{PhaseID: phaseID, Step: step}
	}
	return out
}

// CreateBuiltInTemplates creates the common timeline what-ifs for an asset.
// Templates only reference phases the asset actually has.
func CreateBuiltInTemplates(asset *domain.Asset) *TemplateRegistry {
	registry := NewTemplateRegistry()

	registry.Register(Template{
		Name:        "baseline",
		Description: "Base durations with every override cleared",
		Transforms:  []AssetTransform{&ResetOverrides{}},
	})

	if asset == nil {
		return registry
	}

	has := func(id string) bool {
		_, _, err := asset.Phase(id)
		return err == nil
	}

	if has("foreclosure") {
		registry.Register(Template{
			Name:        "delay_foreclosure_3mo",
			Description: "Contested foreclosure: three extra months",
			Transforms:  steps("foreclosure", 3),
		})
		registry.Register(Template{
			Name:        "delay_foreclosure_6mo",
			Description: "Bankruptcy stay: six extra months of foreclosure",
			Transforms:  steps("foreclosure", 6),
		})
	}

	if has("marketing") {
		registry.Register(Template{
			Name:        "quick_sale",
			Description: "Hot market: marketing one month shorter",
			Transforms:  steps("marketing", -1),
		})
		registry.Register(Template{
			Name:        "slow_sale",
			Description: "Soft market: marketing three months longer",
			Transforms:  steps("marketing", 3),
		})
	}

	if has("renovation") {
		registry.Register(Template{
			Name:        "renovation_overrun",
			Description: "Contractor delays: renovation two months longer",
			Transforms:  steps("renovation", 2),
		})
	}

	if has("foreclosure") && has("marketing") {
		registry.Register(Template{
			Name:        "worst_case",
			Description: "Delayed foreclosure plus a soft market",
			Transforms:  append(steps("foreclosure", 6), steps("marketing", 3)...),
		})
	}

	return registry
}

// ApplyTemplate applies a template to a base asset
func ApplyTemplate(base *domain.Asset, template Template) (*domain.Asset, error) {
	if len(template.Transforms) == 0 {
		return base.DeepCopy(), nil
	}
	return ApplyTransforms(base, template.Transforms)
}

// ParseTemplateList parses a comma-separated list of template names
func ParseTemplateList(templateList string) []string {
	if templateList == "" {
		return nil
	}

	parts := strings.Split(templateList, ",")
	templates := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			templates = append(templates, trimmed)
		}
	}
	return templates
}

// GetTemplateHelp returns formatted help text for all templates
func GetTemplateHelp(registry *TemplateRegistry) string {
	if len(registry.templates) == 0 {
		return "No templates registered"
	}

	var sb strings.Builder
	sb.WriteString("Available Templates:\n\n")
	for _, name := range registry.List() {
		t := registry.templates[name]
		sb.WriteString(fmt.Sprintf("  %-26s %s\n", t.Name, t.Description))
	}

	sb.WriteString("\nUsage:\n")
	sb.WriteString("  dispo compare asset.yaml --with delay_foreclosure_3mo,slow_sale\n")

	return sb.String()
}
