package mysql

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/schemadraft/schemadraft/internal/schema"
	"github.com/schemadraft/schemadraft/internal/util"
)

var needsQuote = regexp.MustCompile(`[A-Z0-9_\s]`)
var keywords = regexp.MustCompile(`(?i)\b(USER|SELECT|INSERT|UPDATE|DELETE|FROM|WHERE|JOIN|LEFT|RIGHT|INNER|GROUP BY|ORDER BY|HAVING|AND|OR|CREATE|DROP|ALTER|TABLE|INDEX|ON|INTO|VALUES|SET|AS|DISTINCT|TYPE|DEFAULT|ORDER|GROUP|LIMIT|SUM|TOTAL|START|END|BEGIN|COMMIT|ROLLBACK|PRIMARY|AUTHORIZATION)\b`)

func quoteIdentifier(val string) string {
	if needsQuote.MatchString(val) || keywords.MatchString(val) {
		return "`" + val + "`"
	}
	return val
}

func columnType(field schema.Field) string {
	// the model emits free-form type tokens; passed through as-is since
	// MySQL accepts most of the common spellings
	if field.Type == "" {
		return "TEXT"
	}
	return strings.ToUpper(field.Type)
}

// createSQL synthesizes DROP+CREATE statements for an entity when the model
// did not emit sql_code. Only column-level constraints are translated; the
// prompt's sql_code path covers foreign keys.
func createSQL(entity schema.Entity) []string {
	var sql strings.Builder
	sql.WriteString("CREATE TABLE ")
	sql.WriteString(quoteIdentifier(entity.Name))
	sql.WriteString(" (\n")
	var primaryKeys []string
	for i, field := range entity.Fields {
		sql.WriteString("\t")
		sql.WriteString(quoteIdentifier(field.Name))
		sql.WriteString(" ")
		sql.WriteString(columnType(field))
		if field.HasConstraint("not null") {
			sql.WriteString(" NOT NULL")
		}
		if field.HasConstraint("unique") {
			sql.WriteString(" UNIQUE")
		}
		if field.HasConstraint("auto increment") || field.HasConstraint("auto_increment") {
			sql.WriteString(" AUTO_INCREMENT")
		}
		if field.HasConstraint("primary key") {
			primaryKeys = append(primaryKeys, quoteIdentifier(field.Name))
		}
		if i < len(entity.Fields)-1 || len(primaryKeys) > 0 {
			sql.WriteString(",")
		}
		sql.WriteString("\n")
	}
	if len(primaryKeys) > 0 {
		sql.WriteString("\tPRIMARY KEY (")
		sql.WriteString(strings.Join(primaryKeys, ", "))
		sql.WriteString(")\n")
	}
	sql.WriteString(") CHARACTER SET=utf8mb4")
	return []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(entity.Name)),
		sql.String(),
	}
}

// splitStatements breaks model-emitted sql_code into individual statements,
// dropping empties.
func splitStatements(code string) []string {
	var statements []string
	for _, statement := range strings.Split(code, ";") {
		if trimmed := strings.TrimSpace(statement); trimmed != "" {
			statements = append(statements, trimmed)
		}
	}
	return statements
}

// deployStatements returns the statements to run for a document: the model's
// sql_code when present, synthesized DDL otherwise.
func deployStatements(doc *schema.Document) []string {
	if doc.SQLCode != "" {
		return splitStatements(doc.SQLCode)
	}
	var statements []string
	for _, entity := range doc.Entities() {
		if entity.Name == "" {
			continue
		}
		statements = append(statements, createSQL(entity)...)
	}
	return statements
}

func parseURLToDSN(urlstr string) (string, error) {
	//username:password@protocol(address)/dbname?param=value
	u, err := url.Parse(urlstr)
	if err != nil {
		return "", fmt.Errorf("error parsing url: %w", err)
	}
	vals := u.Query()
	vals.Set("multiStatements", "true")
	var dsn strings.Builder
	if u.User != nil {
		dsn.WriteString(util.ToUserPass(u))
		dsn.WriteString("@")
	}
	dsn.WriteString("tcp(")
	dsn.WriteString(u.Host)
	dsn.WriteString(")")
	dsn.WriteString(u.Path)
	dsn.WriteString("?")
	dsn.WriteString(vals.Encode())
	return dsn.String(), nil
}
