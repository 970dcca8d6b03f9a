// Package extract provides the reference heuristic extractor: it turns a
// UI-component source file into a draft component record using naive
// text scraping. It is one swappable implementation of the scanner's
// extractor capability; a real parser can replace it without touching
// scanner or pipeline code.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/componentry/compodex/internal/domain/component"
)

// categoryKeywords drives name-based category inference, checked in order.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Actions", []string{"button", "link"}},
	{"Forms", []string{"input", "select", "form", "checkbox", "radio"}},
	{"Overlays", []string{"modal", "dialog", "popup"}},
	{"Layout", []string{"card", "panel", "container"}},
	{"Typography", []string{"text", "heading", "title", "label"}},
	{"Media", []string{"icon", "image", "avatar"}},
	{"Navigation", []string{"nav", "menu", "tab"}},
}

// Extractor is the reference heuristic implementation.
type Extractor struct {
	storybook *StorybookParser
}

// New creates an extractor.
func New() *Extractor {
	return &Extractor{storybook: NewStorybookParser()}
}

// Extract reads a component source file and derives a draft record. When
// storyPath is non-empty, the correlated storybook file contributes usage
// examples.
func (e *Extractor) Extract(filePath, storyPath string) (component.Component, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return component.Component{}, fmt.Errorf("read component file: %w", err)
	}
	content := string(data)

	name := baseName(filePath)

	exportType := component.ExportNamed
	if strings.Contains(content, "export default") {
		exportType = component.ExportDefault
	}

	props := scrapeProps(content)
	hasChildren := strings.Contains(strings.ToLower(content), "children")

	c := component.Component{
		ID:          uuid.New().String(),
		Name:        name,
		Description: describe(name, props, hasChildren),
		FilePath:    filePath,
		Props:       props,
		Category:    inferCategory(name),
		Tags:        inferTags(name, hasChildren),
		ImportPath:  importPath(filePath),
		ExportType:  exportType,
	}

	if storyPath != "" {
		story, err := e.storybook.Parse(storyPath)
		if err != nil {
			return component.Component{}, fmt.Errorf("parse storybook file: %w", err)
		}
		c.Examples = story.Examples()
	}

	return c, nil
}

// baseName strips the directory and extension: Button.tsx -> Button.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// scrapeProps performs a line-based scan of the first `interface ...Props`
// block. Optional props carry a `?` before the colon.
func scrapeProps(content string) []component.Prop {
	var props []component.Prop
	inInterface := false

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)

		if !inInterface {
			if strings.Contains(stripped, "interface") && strings.Contains(stripped, "Props") {
				inInterface = true
			}
			continue
		}

		if strings.Contains(stripped, "}") {
			break
		}
		if strings.HasPrefix(stripped, "//") || !strings.Contains(stripped, ":") {
			continue
		}

		nameP, typeP, _ := strings.Cut(stripped, ":")
		propName := strings.TrimSpace(nameP)
		required := !strings.HasSuffix(propName, "?")
		propName = strings.TrimSuffix(propName, "?")
		propType := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(typeP), ";,"))

		if propName == "" {
			continue
		}
		props = append(props, component.Prop{
			Name:     propName,
			Type:     propType,
			Required: required,
		})
	}

	return props
}

// describe synthesizes a one-line description from what the scrape found.
func describe(name string, props []component.Prop, hasChildren bool) string {
	parts := []string{"UI component " + name}

	if len(props) > 0 {
		n := len(props)
		if n > 3 {
			n = 3
		}
		names := make([]string, n)
		for i := 0; i < n; i++ {
			names[i] = props[i].Name
		}
		parts = append(parts, "with props: "+strings.Join(names, ", "))
	}

	if hasChildren {
		parts = append(parts, "accepts children")
	}

	return strings.Join(parts, ". ") + "."
}

func inferCategory(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return "General"
}

func inferTags(name string, hasChildren bool) []string {
	var tags []string
	lower := strings.ToLower(name)

	if hasChildren {
		tags = append(tags, "container")
	}
	if strings.Contains(lower, "button") {
		tags = append(tags, "interactive")
	}
	if strings.Contains(lower, "form") || strings.Contains(lower, "input") {
		tags = append(tags, "form")
	}
	if strings.Contains(lower, "layout") || strings.Contains(lower, "container") {
		tags = append(tags, "layout")
	}

	return tags
}

// importPath derives a module-relative import path, anchored at the
// nearest `components` or `src` segment, falling back to the base name.
func importPath(filePath string) string {
	withoutExt := strings.TrimSuffix(filePath, filepath.Ext(filePath))
	parts := strings.Split(filepath.ToSlash(withoutExt), "/")

	for _, anchor := range []string{"components", "src"} {
		for i, p := range parts {
			if p == anchor {
				return strings.Join(parts[i:], "/")
			}
		}
	}

	return parts[len(parts)-1]
}
