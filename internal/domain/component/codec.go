package component

import "strings"

// Metadata is the flat record attached to a stored vector for filtering
// and display reconstruction. Derived deterministically from a Component.
type Metadata struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	FilePath     string `json:"file_path"`
	ImportPath   string `json:"import_path"`
	ExportType   string `json:"export_type"`
	ThemeWrapper string `json:"theme_wrapper"`
	NumProps     int    `json:"num_props"`
	NumExamples  int    `json:"num_examples"`
	// Tags is the comma-joined tag list. Lossy: an empty list and absent
	// tags both serialize to ""; callers must tolerate the ambiguity.
	Tags string `json:"tags"`
}

// Document builds the canonical searchable text for a component: an
// ordered, newline-joined list of labeled sections. Empty Props/Tags/
// Examples sections are omitted. Pure: identical records produce
// byte-identical documents.
func (c *Component) Document() string {
	category := c.Category
	if category == "" {
		category = "Uncategorized"
	}

	parts := []string{
		"Component: " + c.Name,
		"Description: " + c.Description,
		"Category: " + category,
	}

	if len(c.Props) > 0 {
		names := make([]string, len(c.Props))
		for i, p := range c.Props {
			names[i] = p.Name
		}
		parts = append(parts, "Props: "+strings.Join(names, ", "))
	}

	if len(c.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(c.Tags, ", "))
	}

	if len(c.Examples) > 0 {
		titles := make([]string, len(c.Examples))
		for i, e := range c.Examples {
			titles[i] = e.Title
		}
		parts = append(parts, "Examples: "+strings.Join(titles, ", "))
	}

	return strings.Join(parts, "\n")
}

// Metadata derives the flat metadata record for the component.
func (c *Component) Metadata() Metadata {
	exportType := string(c.ExportType)
	if exportType == "" {
		exportType = string(ExportNamed)
	}
	return Metadata{
		ID:           c.ID,
		Name:         c.Name,
		Category:     c.Category,
		FilePath:     c.FilePath,
		ImportPath:   c.ImportPath,
		ExportType:   exportType,
		ThemeWrapper: c.ThemeWrapper,
		NumProps:     len(c.Props),
		NumExamples:  len(c.Examples),
		Tags:         strings.Join(c.Tags, ","),
	}
}
