// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Sayiza/orapgsync-sub012/pkg/boundary"
	"github.com/Sayiza/orapgsync-sub012/pkg/connector"
	"github.com/Sayiza/orapgsync-sub012/pkg/model"
	"github.com/Sayiza/orapgsync-sub012/pkg/oraparse"
)

// sqlString converts a driver-returned column value to a string,
// tolerating the nil/[]byte/string variance different database/sql
// drivers return for text columns.
func sqlString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

func sqlBool(v any) bool {
	s := strings.ToUpper(strings.TrimSpace(sqlString(v)))
	return s == "Y" || s == "YES" || s == "TRUE" || s == "1"
}

func sqlInt(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	default:
		return 0
	}
}

// extractSchemas reads the Oracle data dictionary's user list, classifying
// each as a user or excluded system schema per scope.
func extractSchemas(ctx context.Context, conn connector.Connection, sc scope) ([]model.Schema, error) {
	rows, err := conn.Query(ctx, "SELECT username FROM all_users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("query all_users: %w", err)
	}

	schemas := make([]model.Schema, 0, len(rows))
	for _, row := range rows {
		name := sqlString(row["username"])
		kind := model.SchemaUser
		if !sc.includes(name) {
			kind = model.SchemaSystem
		}
		schemas = append(schemas, model.NewSchema(name, kind))
	}
	return schemas, nil
}

func userSchemaNames(schemas []model.Schema) []string {
	names := make([]string, 0, len(schemas))
	for _, s := range schemas {
		if s.IsUser() {
			names = append(names, s.Name())
		}
	}
	return names
}

// sqlQuote renders one single-quoted SQL literal, and inClause a SQL
// "IN (...)" list of such literals. Catalog
// values (schema/table/column names) come back from the data dictionary
// itself, not untrusted user input, but names are still quoted rather than
// pasted raw since this same string is reused verbatim against whichever
// of the two dialects is on the other end of the connection.
func sqlQuote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func inClause(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = sqlQuote(v)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// extractObjectTypes reads every user-defined composite type visible to
// the given schemas, along with its attributes in declaration order.
func extractObjectTypes(ctx context.Context, conn connector.Connection, schemaNames []string) ([]model.ObjectDataType, error) {
	if len(schemaNames) == 0 {
		return nil, nil
	}

	typeRows, err := conn.Query(ctx, fmt.Sprintf(
		"SELECT owner, type_name FROM all_types WHERE typecode = 'OBJECT' AND owner IN %s ORDER BY owner, type_name",
		inClause(schemaNames)))
	if err != nil {
		return nil, fmt.Errorf("query all_types: %w", err)
	}

	types := make([]model.ObjectDataType, 0, len(typeRows))
	for _, row := range typeRows {
		owner, name := sqlString(row["owner"]), sqlString(row["type_name"])

		attrRows, err := conn.Query(ctx, fmt.Sprintf(
			"SELECT attr_name, attr_type_name, length, precision, scale FROM all_type_attrs WHERE owner = %s AND type_name = %s ORDER BY attr_no",
			sqlQuote(owner), sqlQuote(name)))
		if err != nil {
			return nil, fmt.Errorf("query all_type_attrs for %s.%s: %w", owner, name, err)
		}

		attrs := make([]model.TypeAttribute, 0, len(attrRows))
		for _, a := range attrRows {
			attrs = append(attrs, model.TypeAttribute{Name: sqlString(a["attr_name"]), Type: attrTypeDecl(a)})
		}
		types = append(types, model.NewObjectDataType(owner, name, attrs))
	}
	return types, nil
}

func attrTypeDecl(a connector.Row) string {
	base := sqlString(a["attr_type_name"])
	if n := sqlInt(a["length"]); n > 0 {
		return fmt.Sprintf("%s(%d)", base, n)
	}
	if p := sqlInt(a["precision"]); p > 0 {
		if s := sqlInt(a["scale"]); s != 0 {
			return fmt.Sprintf("%s(%d,%d)", base, p, s)
		}
		return fmt.Sprintf("%s(%d)", base, p)
	}
	return base
}

// extractTables reads every table's columns and constraints for the given
// schemas, assembling one model.TableMetadata per table.
func extractTables(ctx context.Context, conn connector.Connection, schemaNames []string) ([]model.TableMetadata, error) {
	if len(schemaNames) == 0 {
		return nil, nil
	}

	colRows, err := conn.Query(ctx, fmt.Sprintf(
		`SELECT owner, table_name, column_name, data_type, data_type_owner, char_length,
		        data_precision, data_scale, nullable, data_default
		 FROM all_tab_columns WHERE owner IN %s ORDER BY owner, table_name, column_id`,
		inClause(schemaNames)))
	if err != nil {
		return nil, fmt.Errorf("query all_tab_columns: %w", err)
	}

	columnsByTable := make(map[tableKey][]model.ColumnMetadata)
	order := make([]tableKey, 0)
	seen := make(map[tableKey]bool)

	for _, row := range colRows {
		key := tableKey{sqlString(row["owner"]), sqlString(row["table_name"])}
		if !seen[key] {
			seen[key] = true
			order = append(order, key)
		}

		opts := []model.ColumnOption{model.WithNullable(sqlBool(row["nullable"]))}
		if n := sqlInt(row["char_length"]); n > 0 {
			opts = append(opts, model.WithCharLength(n))
		}
		if p := sqlInt(row["data_precision"]); p > 0 {
			opts = append(opts, model.WithPrecision(p))
			opts = append(opts, model.WithScale(sqlInt(row["data_scale"])))
		}
		if def := sqlString(row["data_default"]); def != "" {
			opts = append(opts, model.WithDefault(strings.TrimSpace(def)))
		}
		if owner := sqlString(row["data_type_owner"]); owner != "" {
			opts = append(opts, model.WithTypeOwner(owner))
		}

		columnsByTable[key] = append(columnsByTable[key], model.NewColumn(sqlString(row["column_name"]), sqlString(row["data_type"]), opts...))
	}

	constraintsByTable, err := extractConstraints(ctx, conn, schemaNames)
	if err != nil {
		return nil, err
	}

	tables := make([]model.TableMetadata, 0, len(order))
	for _, key := range order {
		tables = append(tables, model.NewTable(key.owner, key.name, columnsByTable[key], constraintsByTable[key], ""))
	}
	return tables, nil
}

type tableKey struct{ owner, name string }

func extractConstraints(ctx context.Context, conn connector.Connection, schemaNames []string) (map[tableKey][]model.ConstraintMetadata, error) {
	rows, err := conn.Query(ctx, fmt.Sprintf(
		`SELECT c.owner, c.table_name, c.constraint_name, c.constraint_type, c.search_condition,
		        c.r_owner, c.r_constraint_name, c.delete_rule,
		        cc.column_name, cc.position
		 FROM all_constraints c
		 JOIN all_cons_columns cc
		   ON cc.owner = c.owner AND cc.constraint_name = c.constraint_name
		 WHERE c.owner IN %s AND c.constraint_type IN ('P','U','R','C')
		 ORDER BY c.owner, c.table_name, c.constraint_name, cc.position`,
		inClause(schemaNames)))
	if err != nil {
		return nil, fmt.Errorf("query all_constraints: %w", err)
	}

	type consKey struct{ owner, table, name string }
	cols := make(map[consKey][]string)
	meta := make(map[consKey]connector.Row)
	consOrder := make([]consKey, 0)

	for _, row := range rows {
		key := consKey{sqlString(row["owner"]), sqlString(row["table_name"]), sqlString(row["constraint_name"])}
		if _, ok := meta[key]; !ok {
			meta[key] = row
			consOrder = append(consOrder, key)
		}
		cols[key] = append(cols[key], sqlString(row["column_name"]))
	}

	refNames, err := resolveReferencedTables(ctx, conn, meta)
	if err != nil {
		return nil, err
	}

	out := make(map[tableKey][]model.ConstraintMetadata)
	for _, key := range consOrder {
		row := meta[key]
		kind := constraintKind(sqlString(row["constraint_type"]))
		c := model.NewConstraint(kind, key.name, key.owner, key.table, cols[key])

		switch kind {
		case model.ForeignKey:
			ref := refNames[consKey{sqlString(row["r_owner"]), "", sqlString(row["r_constraint_name"])}]
			c = c.WithForeignKey(sqlString(row["r_owner"]), ref.table, ref.columns, deleteRule(sqlString(row["delete_rule"])))
		case model.Check:
			c = c.WithCheckExpression(sqlString(row["search_condition"]))
		}

		tk := tableKey{key.owner, key.table}
		out[tk] = append(out[tk], c)
	}
	return out, nil
}

type refTarget struct {
	table   string
	columns []string
}

// resolveReferencedTables looks up the table and columns backing each
// foreign key's referenced PK/UNIQUE constraint, keyed loosely since the
// referenced constraint's owning table isn't known until this second pass.
func resolveReferencedTables(ctx context.Context, conn connector.Connection, meta map[struct{ owner, table, name string }]connector.Row) (map[struct{ owner, table, name string }]refTarget, error) {
	type consKey = struct{ owner, table, name string }
	names := make(map[string]bool)
	for _, row := range meta {
		if sqlString(row["constraint_type"]) == "R" {
			names[sqlString(row["r_constraint_name"])] = true
		}
	}
	if len(names) == 0 {
		return nil, nil
	}

	nameList := make([]string, 0, len(names))
	for n := range names {
		nameList = append(nameList, n)
	}

	rows, err := conn.Query(ctx, fmt.Sprintf(
		`SELECT c.owner, c.table_name, c.constraint_name, cc.column_name, cc.position
		 FROM all_constraints c
		 JOIN all_cons_columns cc ON cc.owner = c.owner AND cc.constraint_name = c.constraint_name
		 WHERE c.constraint_name IN %s
		 ORDER BY c.owner, c.constraint_name, cc.position`,
		inClause(nameList)))
	if err != nil {
		return nil, fmt.Errorf("query referenced constraints: %w", err)
	}

	out := make(map[consKey]refTarget)
	for _, row := range rows {
		key := consKey{sqlString(row["owner"]), "", sqlString(row["constraint_name"])}
		t := out[key]
		t.table = sqlString(row["table_name"])
		t.columns = append(t.columns, sqlString(row["column_name"]))
		out[key] = t
	}
	return out, nil
}

func constraintKind(code string) model.ConstraintKind {
	switch code {
	case "P":
		return model.PrimaryKey
	case "U":
		return model.Unique
	case "R":
		return model.ForeignKey
	case "C":
		return model.Check
	default:
		return model.Check
	}
}

func deleteRule(s string) model.DeleteRule {
	switch strings.ToUpper(s) {
	case "CASCADE":
		return model.Cascade
	case "SET NULL":
		return model.SetNull
	default:
		return model.NoAction
	}
}

// extractViews reads every view's declared columns (from all_tab_columns,
// whose view rows carry data types the same way a table's do) and its
// stored query text.
func extractViews(ctx context.Context, conn connector.Connection, schemaNames []string) ([]model.ViewMetadata, error) {
	if len(schemaNames) == 0 {
		return nil, nil
	}

	viewRows, err := conn.Query(ctx, fmt.Sprintf(
		"SELECT owner, view_name, text FROM all_views WHERE owner IN %s ORDER BY owner, view_name",
		inClause(schemaNames)))
	if err != nil {
		return nil, fmt.Errorf("query all_views: %w", err)
	}

	colRows, err := conn.Query(ctx, fmt.Sprintf(
		`SELECT owner, table_name, column_name, data_type, char_length, data_precision, data_scale
		 FROM all_tab_columns WHERE owner IN %s ORDER BY owner, table_name, column_id`,
		inClause(schemaNames)))
	if err != nil {
		return nil, fmt.Errorf("query all_tab_columns for views: %w", err)
	}

	type tk struct{ owner, name string }
	colsByView := make(map[tk][]model.ViewColumn)
	for _, row := range colRows {
		key := tk{sqlString(row["owner"]), sqlString(row["table_name"])}
		colsByView[key] = append(colsByView[key], model.ViewColumn{
			Name: sqlString(row["column_name"]),
			Type: attrTypeDecl(row),
		})
	}

	views := make([]model.ViewMetadata, 0, len(viewRows))
	for _, row := range viewRows {
		key := tk{sqlString(row["owner"]), sqlString(row["view_name"])}
		views = append(views, model.NewView(key.owner, key.name, colsByView[key], sqlString(row["text"])))
	}
	return views, nil
}

// routines holds every standalone function/procedure and package found for
// the given schemas, as model metadata carrying each routine's raw source.
// The parsed AST is not kept; the implementation stage re-parses the source.
type routines struct {
	functions  []model.FunctionMetadata
	procedures []model.ProcedureMetadata
	packages   []model.PackageMetadata
}

// extractRoutines reads standalone functions/procedures and package bodies
// from all_source, parsing each member body with pkg/oraparse (packages go
// through pkg/boundary first to find each member's span).
func extractRoutines(ctx context.Context, conn connector.Connection, schemaNames []string, sink func(format string, args ...any)) (routines, error) {
	if len(schemaNames) == 0 {
		return routines{}, nil
	}

	objRows, err := conn.Query(ctx, fmt.Sprintf(
		"SELECT owner, object_name, object_type FROM all_objects WHERE owner IN %s AND object_type IN ('FUNCTION','PROCEDURE','PACKAGE BODY') ORDER BY owner, object_name",
		inClause(schemaNames)))
	if err != nil {
		return routines{}, fmt.Errorf("query all_objects: %w", err)
	}

	var out routines
	p := oraparse.NewParser()

	for _, row := range objRows {
		owner, name, kind := sqlString(row["owner"]), sqlString(row["object_name"]), sqlString(row["object_type"])

		src, err := assembleSource(ctx, conn, owner, name, kind)
		if err != nil {
			sink("failed to read source for %s.%s: %v", owner, name, err)
			continue
		}

		switch kind {
		case "FUNCTION":
			ast, err := p.ParseFunctionBody(src)
			if err != nil {
				sink("failed to parse function %s.%s: %v", owner, name, err)
				continue
			}
			out.functions = append(out.functions, model.NewFunction(owner, "", name, paramsFromSignature(ast.Signature), ast.Signature.ReturnType, src))

		case "PROCEDURE":
			ast, err := p.ParseProcedureBody(src)
			if err != nil {
				sink("failed to parse procedure %s.%s: %v", owner, name, err)
				continue
			}
			out.procedures = append(out.procedures, model.NewProcedure(owner, "", name, paramsFromSignature(ast.Signature), src))

		case "PACKAGE BODY":
			funcs, procs := parsePackageMembers(p, src, owner, name, sink)
			out.packages = append(out.packages, model.NewPackage(owner, name, "", src, funcs, procs))
		}
	}

	return out, nil
}

// assembleSource reassembles a PL/SQL object's text from all_source, whose
// rows carry one line per record.
func assembleSource(ctx context.Context, conn connector.Connection, owner, name, kind string) (string, error) {
	rows, err := conn.Query(ctx, fmt.Sprintf(
		"SELECT line, text FROM all_source WHERE owner = %s AND name = %s AND type = %s ORDER BY line",
		sqlQuote(owner), sqlQuote(name), sqlQuote(kind)))
	if err != nil {
		return "", err
	}
	sort.Slice(rows, func(i, j int) bool { return sqlInt(rows[i]["line"]) < sqlInt(rows[j]["line"]) })

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(sqlString(row["text"]))
	}
	return b.String(), nil
}

// parsePackageMembers locates each implemented routine in a package body's
// source with pkg/boundary, then parses each span individually.
func parsePackageMembers(p *oraparse.Parser, src, owner, name string, sink func(format string, args ...any)) ([]model.FunctionMetadata, []model.ProcedureMetadata) {
	var funcs []model.FunctionMetadata
	var procs []model.ProcedureMetadata

	for _, m := range boundary.Scan(src) {
		if !m.HasBody {
			continue
		}
		text := src[m.SignatureSpan.Start:m.BodySpan.End]

		switch m.Kind {
		case oraparse.KindFunction:
			ast, err := p.ParseFunctionBody(text)
			if err != nil {
				sink("failed to parse function %s.%s.%s: %v", owner, name, m.Name, err)
				continue
			}
			funcs = append(funcs, model.NewFunction(owner, name, m.Name, paramsFromSignature(ast.Signature), ast.Signature.ReturnType, text))

		case oraparse.KindProcedure:
			ast, err := p.ParseProcedureBody(text)
			if err != nil {
				sink("failed to parse procedure %s.%s.%s: %v", owner, name, m.Name, err)
				continue
			}
			procs = append(procs, model.NewProcedure(owner, name, m.Name, paramsFromSignature(ast.Signature), text))
		}
	}

	return funcs, procs
}

func paramsFromSignature(sig oraparse.RoutineSignature) []model.Parameter {
	params := make([]model.Parameter, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = model.Parameter{Name: p.Name, Direction: paramDirection(p.Direction), DeclaredType: p.Type}
	}
	return params
}

func paramDirection(d string) model.ParamDirection {
	switch strings.ToUpper(d) {
	case "OUT":
		return model.Out
	case "IN OUT", "INOUT":
		return model.InOut
	default:
		return model.In
	}
}
