package diagram

import (
	"fmt"
	"strings"

	"github.com/schemadraft/schemadraft/internal/schema"
)

type mermaidRenderer struct{}

var _ Renderer = (*mermaidRenderer)(nil)
var _ RendererHelp = (*mermaidRenderer)(nil)

// mermaid identifiers cannot contain spaces
func mermaidIdent(name string) string {
	if name == "" {
		return "unnamed"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// Render produces a mermaid erDiagram. Relationship cardinality tokens go
// through the canonicalizer; unrecognized tokens draw the generic connector
// rather than failing the whole diagram.
func (r *mermaidRenderer) Render(doc *schema.Document) string {
	lines := []string{"erDiagram"}
	entities := doc.Entities()
	for _, entity := range entities {
		block := []string{mermaidIdent(entity.Name) + " {"}
		for _, field := range entity.Fields {
			fieldType := field.Type
			if fieldType == "" {
				fieldType = "string"
			}
			fieldName := field.Name
			if fieldName == "" {
				fieldName = "unknown"
			}
			block = append(block, fmt.Sprintf("  %s %s", strings.ToUpper(mermaidIdent(fieldType)), mermaidIdent(fieldName)))
		}
		block = append(block, "}")
		lines = append(lines, strings.Join(block, "\n"))
	}
	for _, entity := range entities {
		src := mermaidIdent(entity.Name)
		for _, rel := range entity.Relationships {
			dest := rel.RelatedTo
			if dest == "" {
				dest = "unknown"
			}
			connector := rel.Kind().Connector()
			lines = append(lines, fmt.Sprintf("%s %s %s : %q", src, connector, mermaidIdent(dest), rel.Field))
		}
	}
	return strings.Join(lines, "\n")
}

// Name is a unique name for the renderer.
func (r *mermaidRenderer) Name() string {
	return "Mermaid"
}

// Description is the description of the renderer.
func (r *mermaidRenderer) Description() string {
	return "Renders the schema as a mermaid erDiagram with cardinality connectors."
}

func init() {
	Register("mermaid", &mermaidRenderer{})
}
