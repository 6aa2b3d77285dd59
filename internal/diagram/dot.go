package diagram

import (
	"fmt"
	"strings"

	"github.com/schemadraft/schemadraft/internal/schema"
)

type dotRenderer struct{}

var _ Renderer = (*dotRenderer)(nil)
var _ RendererHelp = (*dotRenderer)(nil)

func escapeDotLabel(val string) string {
	val = strings.ReplaceAll(val, `\`, `\\`)
	return strings.ReplaceAll(val, `"`, `\"`)
}

// Render produces a Graphviz digraph: one record node per entity listing its
// fields, one edge per relationship labeled with its type and carrying
// field. Relationship targets are opaque names; a dangling related_to simply
// renders an edge to a node Graphviz creates implicitly.
func (r *dotRenderer) Render(doc *schema.Document) string {
	var out strings.Builder
	out.WriteString("digraph ER {\n")
	out.WriteString("\trankdir=LR;\n")
	out.WriteString("\tnode [shape=box];\n")
	entities := doc.Entities()
	for _, entity := range entities {
		name := entity.Name
		if name == "" {
			name = "unnamed"
		}
		label := []string{escapeDotLabel(name)}
		for _, field := range entity.Fields {
			label = append(label, escapeDotLabel(fmt.Sprintf("%s: %s", field.Name, field.Type)))
		}
		fmt.Fprintf(&out, "\t%q [label=\"%s\"];\n", name, strings.Join(label, `\n`))
	}
	for _, entity := range entities {
		name := entity.Name
		if name == "" {
			name = "unnamed"
		}
		for _, rel := range entity.Relationships {
			dest := rel.RelatedTo
			if dest == "" {
				dest = "unknown"
			}
			fmt.Fprintf(&out, "\t%q -> %q [label=\"%s\"];\n", name, dest, escapeDotLabel(rel.Type)+`\n`+escapeDotLabel(rel.Field))
		}
	}
	out.WriteString("}\n")
	return out.String()
}

// Name is a unique name for the renderer.
func (r *dotRenderer) Name() string {
	return "Graphviz"
}

// Description is the description of the renderer.
func (r *dotRenderer) Description() string {
	return "Renders the schema as a Graphviz DOT entity-relationship digraph."
}

func init() {
	Register("dot", &dotRenderer{})
}
