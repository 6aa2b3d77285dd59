// Package diagram renders a schema document as diagram source text. Each
// renderer is a one-pass string transform of an already-valid document; no
// renderer ever fails on missing keys, mirroring the permissive philosophy of
// the extractor that feeds it.
package diagram

import (
	"fmt"
	"sort"

	"github.com/schemadraft/schemadraft/internal/schema"
)

// Renderer produces diagram source text for a document.
type Renderer interface {
	// Render the document. Must tolerate empty entity lists and missing
	// fields; never returns an error.
	Render(doc *schema.Document) string
}

// RendererHelp is an interface that Renderers implement for the help system.
type RendererHelp interface {
	// Name is a unique name for the renderer.
	Name() string

	// Description is the description of the renderer.
	Description() string
}

var rendererRegistry = map[string]Renderer{}

// Register registers a renderer for a given format.
func Register(format string, renderer Renderer) {
	rendererRegistry[format] = renderer
}

// Render renders the document in the named format.
func Render(format string, doc *schema.Document) (string, error) {
	renderer := rendererRegistry[format]
	if renderer == nil {
		return "", fmt.Errorf("no renderer registered for format %s", format)
	}
	return renderer.Render(doc), nil
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	formats := make([]string, 0, len(rendererRegistry))
	for format := range rendererRegistry {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}
