package services

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GregMSThompson/findash-backend/internal/dto"
)

//go:embed templates.yaml
var templatesYAML []byte

// LoadTemplates parses the built-in dashboard templates.
func LoadTemplates() ([]dto.Template, error) {
	return ParseTemplates(templatesYAML)
}

// ParseTemplates reads templates from YAML. Widgets are decoded through their
// JSON form so the export field names apply unchanged.
func ParseTemplates(src []byte) ([]dto.Template, error) {
	var doc struct {
		Templates []map[string]any `yaml:"templates"`
	}
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	b, err := json.Marshal(doc.Templates)
	if err != nil {
		return nil, fmt.Errorf("encode templates: %w", err)
	}
	var out []dto.Template
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return out, nil
}

// findTemplate matches name case-insensitively.
func findTemplate(templates []dto.Template, name string) (dto.Template, bool) {
	for _, t := range templates {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return dto.Template{}, false
}
