// Package validate checks schema documents for structural and semantic
// problems. Problems are reported as warnings; only unparseable input is an
// error.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	js "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/schemadraft/schemadraft/internal/schema"
)

const documentSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"schema_type": { "type": "string" },
		"tables": { "$ref": "#/$defs/entities" },
		"collections": { "$ref": "#/$defs/entities" },
		"explanation": { "type": "string" },
		"sql_code": { "type": "string" },
		"prisma_code": { "type": "string" }
	},
	"$defs": {
		"entities": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": { "type": "string" },
					"fields": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"name": { "type": "string" },
								"type": { "type": "string" },
								"constraints": {
									"type": "array",
									"items": { "type": "string" }
								}
							}
						}
					},
					"relationships": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"type": { "type": "string" },
								"related_to": { "type": "string" },
								"field": { "type": "string" }
							}
						}
					}
				}
			}
		}
	}
}`

var compiled = js.MustCompileString("document.json", documentSchema)

// Document validates raw JSON and returns the warnings found. An error is
// returned only when the input is not a JSON object at all.
func Document(raw []byte) ([]string, error) {
	var val any
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, ok := val.(map[string]any); !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", val)
	}

	var warnings []string
	if err := compiled.Validate(val); err != nil {
		if ve, ok := err.(*js.ValidationError); ok {
			for _, cause := range ve.BasicOutput().Errors {
				if cause.Error == "" || strings.HasPrefix(cause.Error, "doesn't validate with") {
					continue
				}
				warnings = append(warnings, fmt.Sprintf("%s: %s", cause.InstanceLocation, cause.Error))
			}
		} else {
			return nil, err
		}
	}

	var doc schema.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return warnings, nil
	}
	warnings = append(warnings, semantic(&doc)...)
	return warnings, nil
}

func semantic(doc *schema.Document) []string {
	var warnings []string
	switch doc.SchemaType {
	case schema.SchemaTypeRelational, schema.SchemaTypeNoSQL:
	case "":
		warnings = append(warnings, "missing schema_type")
	default:
		warnings = append(warnings, fmt.Sprintf("unknown schema_type: %s", doc.SchemaType))
	}

	entities := doc.Entities()
	if len(entities) == 0 {
		warnings = append(warnings, "document has no tables or collections")
	}
	if doc.IsRelational() && len(doc.Tables) == 0 && len(doc.Collections) > 0 {
		warnings = append(warnings, "relational document uses collections instead of tables")
	}
	if !doc.IsRelational() && len(doc.Collections) == 0 && len(doc.Tables) > 0 {
		warnings = append(warnings, "nosql document uses tables instead of collections")
	}

	names := make(map[string]bool)
	for _, entity := range entities {
		if entity.Name == "" {
			warnings = append(warnings, "entity with empty name")
			continue
		}
		if names[entity.Name] {
			warnings = append(warnings, fmt.Sprintf("duplicate entity name: %s", entity.Name))
		}
		names[entity.Name] = true
	}

	for _, entity := range entities {
		if len(entity.Fields) == 0 {
			warnings = append(warnings, fmt.Sprintf("entity %s has no fields", entity.Name))
		}
		for _, field := range entity.Fields {
			if field.Name == "" {
				warnings = append(warnings, fmt.Sprintf("entity %s has a field with no name", entity.Name))
			}
		}
		for _, rel := range entity.Relationships {
			if rel.RelatedTo == "" {
				warnings = append(warnings, fmt.Sprintf("entity %s has a relationship with no related_to", entity.Name))
				continue
			}
			if !names[rel.RelatedTo] {
				warnings = append(warnings, fmt.Sprintf("entity %s relates to unknown entity %s", entity.Name, rel.RelatedTo))
			}
			if rel.Kind() == schema.RelationshipUnspecified && rel.Type != "" {
				warnings = append(warnings, fmt.Sprintf("entity %s has unrecognized relationship type %q", entity.Name, rel.Type))
			}
		}
	}
	return warnings
}
