package diagram

import (
	"testing"

	"github.com/schemadraft/schemadraft/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blogDocument() *schema.Document {
	return &schema.Document{
		SchemaType: schema.SchemaTypeRelational,
		Tables: []schema.Entity{
			{
				Name: "users",
				Fields: []schema.Field{
					{Name: "id", Type: "int", Constraints: []string{"primary key"}},
					{Name: "email", Type: "varchar", Constraints: []string{"unique"}},
				},
			},
			{
				Name: "posts",
				Fields: []schema.Field{
					{Name: "id", Type: "int"},
					{Name: "user_id", Type: "int"},
				},
				Relationships: []schema.Relationship{
					{Type: "1:N", RelatedTo: "users", Field: "user_id"},
				},
			},
		},
	}
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"dot", "mermaid"}, Formats())
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render("ascii", blogDocument())
	require.Error(t, err)
}

func TestDotRender(t *testing.T) {
	out, err := Render("dot", blogDocument())
	require.NoError(t, err)
	assert.Contains(t, out, "digraph ER {")
	assert.Contains(t, out, "rankdir=LR;")
	assert.Contains(t, out, `"users" [label="users\nid: int\nemail: varchar"];`)
	assert.Contains(t, out, `"posts" -> "users" [label="1:N\nuser_id"];`)
}

func TestDotRenderDanglingTarget(t *testing.T) {
	doc := &schema.Document{
		SchemaType: schema.SchemaTypeRelational,
		Tables: []schema.Entity{
			{Name: "orders", Relationships: []schema.Relationship{{Type: "1:1", RelatedTo: "ghosts", Field: "ghost_id"}}},
		},
	}
	out, err := Render("dot", doc)
	require.NoError(t, err)
	// related_to is never validated to exist
	assert.Contains(t, out, `"orders" -> "ghosts"`)
}

func TestMermaidRender(t *testing.T) {
	out, err := Render("mermaid", blogDocument())
	require.NoError(t, err)
	assert.Contains(t, out, "erDiagram")
	assert.Contains(t, out, "users {")
	assert.Contains(t, out, "  INT id")
	assert.Contains(t, out, "  VARCHAR email")
	assert.Contains(t, out, `posts ||--o{ users : "user_id"`)
}

func TestMermaidConnectors(t *testing.T) {
	doc := &schema.Document{
		SchemaType: schema.SchemaTypeNoSQL,
		Collections: []schema.Entity{
			{Name: "a", Relationships: []schema.Relationship{
				{Type: "ONE_TO_ONE", RelatedTo: "b", Field: "b_id"},
				{Type: "M:N", RelatedTo: "c", Field: "c_ids"},
				{Type: "weird", RelatedTo: "d", Field: "d_ref"},
			}},
		},
	}
	out, err := Render("mermaid", doc)
	require.NoError(t, err)
	assert.Contains(t, out, `a ||--|| b : "b_id"`)
	assert.Contains(t, out, `a }o--o{ c : "c_ids"`)
	assert.Contains(t, out, `a -- d : "d_ref"`)
}

func TestRenderEmptyDocument(t *testing.T) {
	doc := &schema.Document{SchemaType: schema.SchemaTypeRelational}
	for _, format := range Formats() {
		out, err := Render(format, doc)
		require.NoError(t, err, format)
		assert.NotEmpty(t, out, format)
	}
}
