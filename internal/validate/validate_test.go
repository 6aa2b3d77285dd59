package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidDocumentNoWarnings(t *testing.T) {
	raw := []byte(`{
		"schema_type": "relational",
		"tables": [
			{"name": "users", "fields": [{"name": "id", "type": "int", "constraints": ["primary key"]}]},
			{"name": "posts", "fields": [{"name": "id", "type": "int"}], "relationships": [{"type": "1:N", "related_to": "users", "field": "user_id"}]}
		]
	}`)
	warnings, err := Document(raw)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestInvalidJSON(t *testing.T) {
	_, err := Document([]byte(`{"schema_type":`))
	assert.Error(t, err)
}

func TestNonObject(t *testing.T) {
	_, err := Document([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestStructuralWarnings(t *testing.T) {
	raw := []byte(`{"schema_type": 42, "tables": "nope"}`)
	warnings, err := Document(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
}

func TestMissingSchemaType(t *testing.T) {
	warnings, err := Document([]byte(`{"tables": [{"name": "users", "fields": [{"name": "id"}]}]}`))
	require.NoError(t, err)
	assert.Contains(t, warnings, "missing schema_type")
}

func TestUnknownRelationshipTarget(t *testing.T) {
	raw := []byte(`{
		"schema_type": "relational",
		"tables": [
			{"name": "posts", "fields": [{"name": "id", "type": "int"}], "relationships": [{"type": "1:N", "related_to": "users", "field": "user_id"}]}
		]
	}`)
	warnings, err := Document(raw)
	require.NoError(t, err)
	assert.Contains(t, warnings, "entity posts relates to unknown entity users")
}

func TestUnrecognizedRelationshipType(t *testing.T) {
	raw := []byte(`{
		"schema_type": "relational",
		"tables": [
			{"name": "a", "fields": [{"name": "id", "type": "int"}]},
			{"name": "b", "fields": [{"name": "id", "type": "int"}], "relationships": [{"type": "sorta", "related_to": "a", "field": "a_id"}]}
		]
	}`)
	warnings, err := Document(raw)
	require.NoError(t, err)
	assert.Contains(t, warnings, `entity b has unrecognized relationship type "sorta"`)
}

func TestDuplicateEntityAndEmptyFields(t *testing.T) {
	raw := []byte(`{
		"schema_type": "nosql",
		"collections": [
			{"name": "events", "fields": [{"name": "ts", "type": "date"}]},
			{"name": "events"}
		]
	}`)
	warnings, err := Document(raw)
	require.NoError(t, err)
	assert.Contains(t, warnings, "duplicate entity name: events")
	assert.Contains(t, warnings, "entity events has no fields")
}
