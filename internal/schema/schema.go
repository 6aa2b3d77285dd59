package schema

import "strings"

// SchemaTypeRelational and SchemaTypeNoSQL are the two schema_type values the
// model is prompted to emit.
const (
	SchemaTypeRelational = "relational"
	SchemaTypeNoSQL      = "nosql"
)

// Field is a single column (relational) or document field (nosql).
type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Constraints []string `json:"constraints,omitempty"`
}

// HasConstraint reports whether the field carries the named constraint,
// case-insensitively. The model emits free-form constraint tokens so we never
// treat them as a closed set.
func (f Field) HasConstraint(name string) bool {
	for _, c := range f.Constraints {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// Relationship describes an edge from the owning entity to another entity.
// RelatedTo is an opaque name and is never validated to exist.
type Relationship struct {
	Type      string `json:"type"`
	RelatedTo string `json:"related_to"`
	Field     string `json:"field"`
}

// Entity is a table (relational) or collection (nosql).
type Entity struct {
	Name          string         `json:"name"`
	Fields        []Field        `json:"fields,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// Document is the structured schema produced by a single generation request.
// Any key may be missing from the model output; missing keys decode to zero
// values and consumers treat those as empty rather than failing.
type Document struct {
	SchemaType  string   `json:"schema_type"`
	Tables      []Entity `json:"tables,omitempty"`
	Collections []Entity `json:"collections,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	SQLCode     string   `json:"sql_code,omitempty"`
	PrismaCode  string   `json:"prisma_code,omitempty"`
}

// Entities returns the document's entity list regardless of whether the model
// keyed them as tables or collections. When both are present (the model is not
// trusted to pick one) tables win for relational documents and collections
// otherwise.
func (d *Document) Entities() []Entity {
	if d.SchemaType == SchemaTypeRelational {
		if len(d.Tables) > 0 {
			return d.Tables
		}
		return d.Collections
	}
	if len(d.Collections) > 0 {
		return d.Collections
	}
	return d.Tables
}

// IsRelational reports whether the document describes a relational schema.
func (d *Document) IsRelational() bool {
	return d.SchemaType == SchemaTypeRelational
}
