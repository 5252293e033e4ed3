// Copyright (c) 2025 The jobdash Authors
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sqlexec

import (
	"context"
	"strings"
)

const listTablesSQL = `
	SELECT t.table_schema AS schema,
	       t.table_name   AS table,
	       t.table_type   AS type,
	       (SELECT count(*) FROM information_schema.columns c
	         WHERE c.table_schema = t.table_schema AND c.table_name = t.table_name) AS columns
	FROM information_schema.tables t
	WHERE t.table_schema NOT IN ('pg_catalog', 'information_schema')
	ORDER BY t.table_schema, t.table_name`

const describeTableSQL = `
	SELECT c.column_name AS column,
	       c.data_type   AS type,
	       c.is_nullable AS nullable,
	       COALESCE(c.column_default, '') AS default,
	       EXISTS (
	         SELECT 1
	         FROM information_schema.table_constraints tc
	         JOIN information_schema.key_column_usage kc
	           ON tc.constraint_name = kc.constraint_name AND tc.table_schema = kc.table_schema
	         WHERE tc.table_schema = c.table_schema AND tc.table_name = c.table_name
	           AND tc.constraint_type = 'PRIMARY KEY' AND kc.column_name = c.column_name
	       ) AS primary_key
	FROM information_schema.columns c
	WHERE c.table_schema = $1 AND c.table_name = $2
	ORDER BY c.ordinal_position`

// ListTables lists user tables and views with their column counts.
func (e *Executor) ListTables(ctx context.Context) Outcome {
	return e.execute(ctx, listTablesSQL, SourceCatalog)
}

// DescribeTable lists the columns of one table. name is "table" or "schema.table".
// A table that does not exist yields a Success with no rows.
func (e *Executor) DescribeTable(ctx context.Context, name string) Outcome {
	schema, table := ParseTableName(name)
	return e.execute(ctx, describeTableSQL, SourceCatalog, schema, table)
}

// ParseTableName splits a table name into schema and table components.
// If no schema is specified, it defaults to "public". Unquoted identifiers are folded to
// lower case the way PostgreSQL folds them, so Job_Postings finds job_postings.
func ParseTableName(name string) (schema string, table string) {
	name = strings.TrimSpace(name)
	schema = "public"
	table = name
	if s, t, ok := strings.Cut(name, "."); ok {
		schema, table = s, t
	}
	return foldIdent(schema), foldIdent(table)
}

func foldIdent(ident string) string {
	if len(ident) >= 2 && strings.HasPrefix(ident, `"`) && strings.HasSuffix(ident, `"`) {
		return strings.ReplaceAll(ident[1:len(ident)-1], `""`, `"`)
	}
	return strings.ToLower(ident)
}
