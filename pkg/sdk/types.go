package compodex

import (
	"github.com/componentry/compodex/internal/domain/component"
	"github.com/componentry/compodex/internal/domain/search"
	"github.com/componentry/compodex/internal/store/sqlite"
	"github.com/componentry/compodex/internal/usecase/scan"
)

// Component is a UI component record.
type Component struct {
	ID           string
	Name         string
	Description  string
	FilePath     string
	Props        []Prop
	Examples     []Example
	ThemeWrapper string
	Category     string
	Tags         []string
	ImportPath   string
	ExportType   string // "named" or "default"
}

// Prop describes one component property.
type Prop struct {
	Name         string
	Type         string
	Required     bool
	DefaultValue string
	Description  string
}

// Example is a usage snippet, typically harvested from Storybook.
type Example struct {
	Title       string
	Code        string
	Description string
	Source      string
}

// Metadata is the filterable projection stored alongside each component.
type Metadata struct {
	ID           string
	Name         string
	Category     string
	FilePath     string
	ImportPath   string
	ExportType   string
	ThemeWrapper string
	NumProps     int
	NumExamples  int
	// Tags is the comma-joined tag list.
	Tags string
}

// Result is one search hit, most similar first.
type Result struct {
	ID       string
	Score    float64
	Document string
	Metadata Metadata
}

// IndexedComponent is the stored view of a component: its searchable
// document and filterable metadata.
type IndexedComponent struct {
	ID       string
	Document string
	Metadata Metadata
}

// ScanRequest controls a library scan.
type ScanRequest struct {
	Folder            string
	IncludeStorybooks bool
	IncludeTests      bool
	Recursive         bool
}

// ScanReport summarizes a scan run.
type ScanReport struct {
	ComponentsFound int
	Components      []Component
	Errors          []string
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status         string            // "ok" or "degraded"
	Checks         map[string]string // component -> "ok"/"error"
	EmbeddingModel string
	ComponentCount int
}

func toDomain(c Component) component.Component {
	props := make([]component.Prop, len(c.Props))
	for i, p := range c.Props {
		props[i] = component.Prop(p)
	}
	examples := make([]component.Example, len(c.Examples))
	for i, e := range c.Examples {
		examples[i] = component.Example(e)
	}
	return component.Component{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		FilePath:     c.FilePath,
		Props:        props,
		Examples:     examples,
		ThemeWrapper: c.ThemeWrapper,
		Category:     c.Category,
		Tags:         c.Tags,
		ImportPath:   c.ImportPath,
		ExportType:   component.ExportType(c.ExportType),
	}
}

func fromDomain(c component.Component) Component {
	props := make([]Prop, len(c.Props))
	for i, p := range c.Props {
		props[i] = Prop(p)
	}
	examples := make([]Example, len(c.Examples))
	for i, e := range c.Examples {
		examples[i] = Example(e)
	}
	return Component{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		FilePath:     c.FilePath,
		Props:        props,
		Examples:     examples,
		ThemeWrapper: c.ThemeWrapper,
		Category:     c.Category,
		Tags:         c.Tags,
		ImportPath:   c.ImportPath,
		ExportType:   string(c.ExportType),
	}
}

func fromMetadata(m component.Metadata) Metadata {
	return Metadata(m)
}

func fromResult(r search.Result) Result {
	return Result{
		ID:       r.ID,
		Score:    r.Score,
		Document: r.Document,
		Metadata: fromMetadata(r.Metadata),
	}
}

func fromTuple(t sqlite.Tuple) IndexedComponent {
	return IndexedComponent{
		ID:       t.ID,
		Document: t.Document,
		Metadata: fromMetadata(t.Metadata),
	}
}

func fromReport(r scan.Report) ScanReport {
	components := make([]Component, len(r.Components))
	for i, c := range r.Components {
		components[i] = fromDomain(c)
	}
	return ScanReport{
		ComponentsFound: r.ComponentsFound,
		Components:      components,
		Errors:          r.Errors,
	}
}
