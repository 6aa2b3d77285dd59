package schema

import "strings"

// RelationshipKind is the cardinality class of a relationship after
// canonicalization. Anything the model emits outside the known tokens maps to
// RelationshipUnspecified so rendering never fails on creative output.
type RelationshipKind int

const (
	RelationshipUnspecified RelationshipKind = iota
	RelationshipOneToOne
	RelationshipOneToMany
	RelationshipManyToMany
)

func (k RelationshipKind) String() string {
	switch k {
	case RelationshipOneToOne:
		return "1:1"
	case RelationshipOneToMany:
		return "1:N"
	case RelationshipManyToMany:
		return "M:N"
	}
	return "unspecified"
}

// Connector returns the mermaid erDiagram edge marker for the kind. The
// unspecified kind renders as a plain line rather than being rejected.
func (k RelationshipKind) Connector() string {
	switch k {
	case RelationshipOneToOne:
		return "||--||"
	case RelationshipOneToMany:
		return "||--o{"
	case RelationshipManyToMany:
		return "}o--o{"
	}
	return "--"
}

// NormalizeRelationship canonicalizes a raw relationship type token. Hyphens
// are converted to colons before matching and matching is case-insensitive,
// so "1-1", "1:n" and "ONE_TO_MANY" all resolve. Unknown tokens resolve to
// RelationshipUnspecified, never an error.
func NormalizeRelationship(raw string) RelationshipKind {
	token := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", ":"))
	switch token {
	case "1:1", "ONE_TO_ONE":
		return RelationshipOneToOne
	case "1:N", "ONE_TO_MANY":
		return RelationshipOneToMany
	case "M:N", "MANY_TO_MANY":
		return RelationshipManyToMany
	}
	return RelationshipUnspecified
}

// Kind returns the canonical cardinality class for the relationship.
func (r Relationship) Kind() RelationshipKind {
	return NormalizeRelationship(r.Type)
}
