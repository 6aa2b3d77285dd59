// Package prompt builds the generation prompt sent to the language model. It
// is a static template substitution; all of the decision logic lives in the
// extractor that interprets the response.
package prompt

import (
	"strings"
	"text/template"
)

// Request carries the user inputs substituted into the template.
type Request struct {
	// Description is the natural-language description of the application.
	Description string
	// SchemaType is "relational" or "nosql".
	SchemaType string
	// IncludeCode requests the sql_code/prisma_code fields in the output.
	IncludeCode bool
}

var promptTemplate = template.Must(template.New("schema").Parse(`
You are a database design expert. Generate a detailed database schema in JSON format ONLY based on:
- Application description: {{.Description}}
- Schema type: {{.SchemaType}}

Output MUST be a SINGLE VALID JSON object with this EXACT structure:
{
    "schema_type": "relational|nosql",
    "tables|collections": [
        {
            "name": "table_name",
            "fields": [
                {
                    "name": "field_name",
                    "type": "data_type",
                    "constraints": ["constraint1", "constraint2"]
                }
            ],
            "relationships": [
                {
                    "type": "1:1|1:N|M:N",
                    "related_to": "related_table",
                    "field": "foreign_key_field"
                }
            ]
        }
    ],
    "explanation": "Brief design explanation"{{if .IncludeCode}},
    "sql_code": "Include valid SQL CREATE TABLE statements for all tables, including PRIMARY and FOREIGN KEY constraints if relational. If nosql, leave empty string.",
    "prisma_code": "Include valid Prisma schema code if nosql. If relational, leave empty string."{{end}}
}

IMPORTANT RULES:
1. Output ONLY the raw JSON with NO additional text
2. Ensure all quotes are straight double quotes (")
3. No trailing commas in arrays/objects
4. No comments or explanations outside the JSON
{{- if .IncludeCode}}
5. The "sql_code" must be valid SQL CREATE statements for relational schemas
6. The "prisma_code" must be valid Prisma schema for NoSQL databases
7. Both code fields must come at the end (after explanation)
8. All brackets and braces must be properly closed
{{- else}}
5. The "explanation" field must be the last field
6. All brackets and braces must be properly closed
{{- end}}

BEGIN OUTPUT:
`))

// Build renders the prompt for the request.
func Build(req Request) (string, error) {
	var out strings.Builder
	if err := promptTemplate.Execute(&out, req); err != nil {
		return "", err
	}
	return out.String(), nil
}
