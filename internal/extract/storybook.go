package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/componentry/compodex/internal/domain/component"
)

var (
	titleRegex = regexp.MustCompile(`title:\s*['"]([^'"]+)['"]`)
	// CSF object stories: export const Primary = { ... }
	storyRegex = regexp.MustCompile(`(?s)export const (\w+)(?:\s*:\s*\w+)?\s*=\s*\{[^}]*\}`)
	// Older template-bound stories: export const Primary = Template.bind({})
	templateRegex = regexp.MustCompile(`export const (\w+) = .*\.bind\(\{\}\)`)
)

// Story is one named story harvested from a storybook file.
type Story struct {
	Name string
	Code string
}

// Storybook is the parse result for a single storybook file.
type Storybook struct {
	Title         string
	ComponentName string
	Stories       []Story
}

// StorybookParser scrapes story exports out of .stories.* files.
type StorybookParser struct{}

// NewStorybookParser creates a parser.
func NewStorybookParser() *StorybookParser {
	return &StorybookParser{}
}

// Parse reads a storybook file and extracts its stories and meta title.
func (p *StorybookParser) Parse(path string) (*Storybook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read storybook file: %w", err)
	}
	content := string(data)

	componentName := storyBaseName(path)

	title := componentName
	if m := titleRegex.FindStringSubmatch(content); m != nil {
		title = m[1]
	}

	var stories []Story
	seen := make(map[string]bool)

	for _, m := range storyRegex.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if name == "meta" || name == "default" || seen[name] {
			continue
		}
		seen[name] = true
		stories = append(stories, Story{Name: name, Code: m[0]})
	}

	for _, m := range templateRegex.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		stories = append(stories, Story{Name: name, Code: m[0]})
	}

	return &Storybook{
		Title:         title,
		ComponentName: componentName,
		Stories:       stories,
	}, nil
}

// Examples converts the parsed stories into component examples.
func (sb *Storybook) Examples() []component.Example {
	examples := make([]component.Example, len(sb.Stories))
	for i, st := range sb.Stories {
		examples[i] = component.Example{
			Title:       st.Name,
			Code:        st.Code,
			Description: "Example from Storybook: " + st.Name,
			Source:      "storybook",
		}
	}
	return examples
}

// storyBaseName strips the story suffix: Button.stories.tsx -> Button.
func storyBaseName(path string) string {
	base := baseName(path) // strips .tsx/.ts
	return strings.TrimSuffix(base, ".stories")
}
