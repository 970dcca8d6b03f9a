// Package component defines the component record, the unit of indexing,
// and its derived searchable representations.
package component

import (
	"fmt"

	"github.com/componentry/compodex/internal/domain"
)

// ExportType is how a component is exported from its source module.
type ExportType string

const (
	// ExportNamed is a named export.
	ExportNamed ExportType = "named"
	// ExportDefault is a default export.
	ExportDefault ExportType = "default"
)

// Prop describes a single component property.
type Prop struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Required     bool   `json:"required"`
	DefaultValue string `json:"default_value,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Example is a usage example, typically harvested from a storybook file.
type Example struct {
	Title       string `json:"title"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// Component is the component record. The id is assigned once and immutable;
// re-adding an existing id is an update, never a silent duplicate.
type Component struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	FilePath     string     `json:"file_path"`
	Props        []Prop     `json:"props"`
	Examples     []Example  `json:"examples"`
	ThemeWrapper string     `json:"theme_wrapper,omitempty"`
	Category     string     `json:"category,omitempty"`
	Tags         []string   `json:"tags"`
	ImportPath   string     `json:"import_path,omitempty"`
	ExportType   ExportType `json:"export_type"`
	CreatedAt    string     `json:"created_at,omitempty"`
	UpdatedAt    string     `json:"updated_at,omitempty"`
}

// Validate checks the record before it enters the pipeline.
func (c *Component) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("component id is required: %w", domain.ErrValidation)
	}
	if c.Name == "" {
		return fmt.Errorf("component name is required: %w", domain.ErrValidation)
	}
	switch c.ExportType {
	case "", ExportNamed, ExportDefault:
	default:
		return fmt.Errorf("export_type must be %q or %q, got %q: %w",
			ExportNamed, ExportDefault, c.ExportType, domain.ErrValidation)
	}
	return nil
}
