// SPDX-License-Identifier: Apache-2.0

// Package model holds the typed, immutable metadata records that flow
// between extraction jobs, the state store and write jobs. Every record is
// built through a constructor; none expose public setters, so a record
// handed to the state store can never be mutated by a caller after the
// fact.
package model

// SchemaKind classifies a database user/schema.
type SchemaKind int

const (
	SchemaUnknown SchemaKind = iota
	SchemaSystem
	SchemaUser
)

// Schema describes a single Oracle user/PostgreSQL schema.
type Schema struct {
	name string
	kind SchemaKind
}

// NewSchema constructs a Schema. Panics are never used for validation here;
// callers are the extraction jobs, which already trust the data dictionary.
func NewSchema(name string, kind SchemaKind) Schema {
	return Schema{name: name, kind: kind}
}

func (s Schema) Name() string     { return s.name }
func (s Schema) Kind() SchemaKind { return s.kind }
func (s Schema) IsUser() bool     { return s.kind == SchemaUser }

// ColumnMetadata describes a single column of a table.
//
// Invariant: at most one of CharLength or (Precision, Scale) is meaningful
// for a given base type; the dialect mapper decides which based on
// BaseType.
type ColumnMetadata struct {
	name       string
	baseType   string
	typeOwner  string // non-empty only for user-defined composite types
	charLength int
	precision  int
	scale      int
	hasScale   bool
	nullable   bool
	defaultExp string
}

type ColumnOption func(*ColumnMetadata)

func WithCharLength(n int) ColumnOption { return func(c *ColumnMetadata) { c.charLength = n } }
func WithPrecision(p int) ColumnOption  { return func(c *ColumnMetadata) { c.precision = p } }
func WithScale(s int) ColumnOption {
	return func(c *ColumnMetadata) { c.scale, c.hasScale = s, true }
}
func WithNullable(n bool) ColumnOption    { return func(c *ColumnMetadata) { c.nullable = n } }
func WithDefault(expr string) ColumnOption {
	return func(c *ColumnMetadata) { c.defaultExp = expr }
}
func WithTypeOwner(owner string) ColumnOption {
	return func(c *ColumnMetadata) { c.typeOwner = owner }
}

func NewColumn(name, baseType string, opts ...ColumnOption) ColumnMetadata {
	c := ColumnMetadata{name: name, baseType: baseType, nullable: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c ColumnMetadata) Name() string       { return c.name }
func (c ColumnMetadata) BaseType() string   { return c.baseType }
func (c ColumnMetadata) TypeOwner() string  { return c.typeOwner }
func (c ColumnMetadata) CharLength() int    { return c.charLength }
func (c ColumnMetadata) Precision() int     { return c.precision }
func (c ColumnMetadata) Scale() (int, bool) { return c.scale, c.hasScale }
func (c ColumnMetadata) Nullable() bool     { return c.nullable }
func (c ColumnMetadata) Default() string    { return c.defaultExp }
func (c ColumnMetadata) IsUserType() bool   { return c.typeOwner != "" }

// ConstraintKind enumerates the constraint kinds extracted from Oracle.
type ConstraintKind int

const (
	PrimaryKey ConstraintKind = iota
	ForeignKey
	Unique
	Check
	NotNull
)

func (k ConstraintKind) String() string {
	switch k {
	case PrimaryKey:
		return "PRIMARY KEY"
	case ForeignKey:
		return "FOREIGN KEY"
	case Unique:
		return "UNIQUE"
	case Check:
		return "CHECK"
	case NotNull:
		return "NOT NULL"
	default:
		return "UNKNOWN"
	}
}

// DeleteRule enumerates the ON DELETE behaviors of a foreign key.
type DeleteRule int

const (
	NoAction DeleteRule = iota
	Restrict
	Cascade
	SetNull
	SetDefault
)

func (r DeleteRule) String() string {
	switch r {
	case Restrict:
		return "RESTRICT"
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	case SetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// ConstraintMetadata describes a single constraint on a table.
//
// Invariant: FK column count equals referenced-column count. Unique/PK
// column tuples are non-empty. These are validated by NewConstraint's
// callers (the extraction job), not re-checked here: a value that reaches
// the state store is already well-formed.
type ConstraintMetadata struct {
	kind          ConstraintKind
	name          string
	schema        string
	table         string
	columns       []string
	refSchema     string
	refTable      string
	refColumns    []string
	deleteRule    DeleteRule
	checkExpr     string
}

func NewConstraint(kind ConstraintKind, name, schema, table string, columns []string) ConstraintMetadata {
	return ConstraintMetadata{
		kind:    kind,
		name:    name,
		schema:  schema,
		table:   table,
		columns: append([]string(nil), columns...),
	}
}

func (c ConstraintMetadata) WithForeignKey(refSchema, refTable string, refColumns []string, rule DeleteRule) ConstraintMetadata {
	c.refSchema = refSchema
	c.refTable = refTable
	c.refColumns = append([]string(nil), refColumns...)
	c.deleteRule = rule
	return c
}

func (c ConstraintMetadata) WithCheckExpression(expr string) ConstraintMetadata {
	c.checkExpr = expr
	return c
}

func (c ConstraintMetadata) Kind() ConstraintKind   { return c.kind }
func (c ConstraintMetadata) Name() string           { return c.name }
func (c ConstraintMetadata) Schema() string         { return c.schema }
func (c ConstraintMetadata) Table() string          { return c.table }
func (c ConstraintMetadata) Columns() []string      { return append([]string(nil), c.columns...) }
func (c ConstraintMetadata) RefSchema() string       { return c.refSchema }
func (c ConstraintMetadata) RefTable() string        { return c.refTable }
func (c ConstraintMetadata) RefColumns() []string    { return append([]string(nil), c.refColumns...) }
func (c ConstraintMetadata) DeleteRule() DeleteRule  { return c.deleteRule }
func (c ConstraintMetadata) CheckExpression() string { return c.checkExpr }

// QualifiedTable returns "schema.table" for the owning table.
func (c ConstraintMetadata) QualifiedTable() string { return c.schema + "." + c.table }

// QualifiedRefTable returns "schema.table" for the referenced table (FK only).
func (c ConstraintMetadata) QualifiedRefTable() string { return c.refSchema + "." + c.refTable }

// TableMetadata describes a single table.
//
// Invariant: constraint column names are a subset of column names. This is
// enforced by Validate, which extraction jobs call before handing the value
// to the state store.
type TableMetadata struct {
	schema      string
	name        string
	columns     []ColumnMetadata
	constraints []ConstraintMetadata
	storage     string
}

func NewTable(schema, name string, columns []ColumnMetadata, constraints []ConstraintMetadata, storage string) TableMetadata {
	return TableMetadata{
		schema:      schema,
		name:        name,
		columns:     append([]ColumnMetadata(nil), columns...),
		constraints: append([]ConstraintMetadata(nil), constraints...),
		storage:     storage,
	}
}

func (t TableMetadata) Schema() string                 { return t.schema }
func (t TableMetadata) Name() string                   { return t.name }
func (t TableMetadata) Columns() []ColumnMetadata       { return append([]ColumnMetadata(nil), t.columns...) }
func (t TableMetadata) Constraints() []ConstraintMetadata {
	return append([]ConstraintMetadata(nil), t.constraints...)
}
func (t TableMetadata) Storage() string        { return t.storage }
func (t TableMetadata) QualifiedName() string  { return t.schema + "." + t.name }

// Validate reports whether every constraint's columns are a subset of the
// table's own columns.
func (t TableMetadata) Validate() error {
	known := make(map[string]bool, len(t.columns))
	for _, c := range t.columns {
		known[c.Name()] = true
	}
	for _, c := range t.constraints {
		for _, col := range c.Columns() {
			if !known[col] {
				return InvalidTableError{Table: t.QualifiedName(), Reason: "constraint " + c.Name() + " references unknown column " + col}
			}
		}
	}
	return nil
}

// InvalidTableError reports a TableMetadata invariant violation.
type InvalidTableError struct {
	Table  string
	Reason string
}

func (e InvalidTableError) Error() string { return e.Table + ": " + e.Reason }

// ViewColumn is a single projected column of a view, with its PostgreSQL
// type already resolved so a stub can be created even when SQL is absent.
type ViewColumn struct {
	Name string
	Type string
}

// ViewMetadata describes a view.
//
// Invariant: columns are present even when SQL is missing, which enables
// stub creation ahead of implementation.
type ViewMetadata struct {
	schema  string
	name    string
	columns []ViewColumn
	sql     string
}

func NewView(schema, name string, columns []ViewColumn, sql string) ViewMetadata {
	return ViewMetadata{schema: schema, name: name, columns: append([]ViewColumn(nil), columns...), sql: sql}
}

func (v ViewMetadata) Schema() string           { return v.schema }
func (v ViewMetadata) Name() string             { return v.name }
func (v ViewMetadata) Columns() []ViewColumn     { return append([]ViewColumn(nil), v.columns...) }
func (v ViewMetadata) SQL() string              { return v.sql }
func (v ViewMetadata) HasSQL() bool             { return v.sql != "" }
func (v ViewMetadata) QualifiedName() string    { return v.schema + "." + v.name }

// TypeAttribute is a single attribute of a composite type.
type TypeAttribute struct {
	Name string
	Type string
}

// ObjectDataType describes a user-defined composite (object) type, keyed
// uniquely by (schema, name).
type ObjectDataType struct {
	schema     string
	name       string
	attributes []TypeAttribute
}

func NewObjectDataType(schema, name string, attrs []TypeAttribute) ObjectDataType {
	return ObjectDataType{schema: schema, name: name, attributes: append([]TypeAttribute(nil), attrs...)}
}

func (o ObjectDataType) Schema() string            { return o.schema }
func (o ObjectDataType) Name() string               { return o.name }
func (o ObjectDataType) Attributes() []TypeAttribute { return append([]TypeAttribute(nil), o.attributes...) }
func (o ObjectDataType) QualifiedName() string      { return o.schema + "." + o.name }

// ParamDirection enumerates routine parameter passing modes.
type ParamDirection int

const (
	In ParamDirection = iota
	Out
	InOut
)

// Parameter is a single routine parameter.
type Parameter struct {
	Name          string
	Direction     ParamDirection
	DeclaredType  string
}

// FunctionMetadata describes a standalone or packaged Oracle function.
type FunctionMetadata struct {
	schema     string
	pkg        string // empty if not packaged
	name       string
	params     []Parameter
	returnType string
	source     string
}

func NewFunction(schema, pkg, name string, params []Parameter, returnType, source string) FunctionMetadata {
	return FunctionMetadata{schema: schema, pkg: pkg, name: name, params: append([]Parameter(nil), params...), returnType: returnType, source: source}
}

func (f FunctionMetadata) Schema() string       { return f.schema }
func (f FunctionMetadata) Package() string      { return f.pkg }
func (f FunctionMetadata) Name() string         { return f.name }
func (f FunctionMetadata) Params() []Parameter  { return append([]Parameter(nil), f.params...) }
func (f FunctionMetadata) ReturnType() string   { return f.returnType }
func (f FunctionMetadata) Source() string       { return f.source }
func (f FunctionMetadata) IsPackaged() bool     { return f.pkg != "" }
func (f FunctionMetadata) QualifiedName() string {
	if f.pkg != "" {
		return f.schema + "." + f.pkg + "." + f.name
	}
	return f.schema + "." + f.name
}

// ProcedureMetadata describes a standalone or packaged Oracle procedure.
type ProcedureMetadata struct {
	schema string
	pkg    string
	name   string
	params []Parameter
	source string
}

func NewProcedure(schema, pkg, name string, params []Parameter, source string) ProcedureMetadata {
	return ProcedureMetadata{schema: schema, pkg: pkg, name: name, params: append([]Parameter(nil), params...), source: source}
}

func (p ProcedureMetadata) Schema() string       { return p.schema }
func (p ProcedureMetadata) Package() string      { return p.pkg }
func (p ProcedureMetadata) Name() string         { return p.name }
func (p ProcedureMetadata) Params() []Parameter  { return append([]Parameter(nil), p.params...) }
func (p ProcedureMetadata) Source() string       { return p.source }
func (p ProcedureMetadata) IsPackaged() bool     { return p.pkg != "" }
func (p ProcedureMetadata) QualifiedName() string {
	if p.pkg != "" {
		return p.schema + "." + p.pkg + "." + p.name
	}
	return p.schema + "." + p.name
}

// PackageMetadata describes an Oracle package: its member routines plus the
// raw spec/body source boundary-scanned (pkg/boundary) to produce them.
//
// Added beyond the distilled spec.md to give the Job RPC surface's
// ("ORACLE", "PACKAGE") operation type somewhere concrete to land: package
// source is what the boundary scanner (C6) actually consumes.
type PackageMetadata struct {
	schema     string
	name       string
	specSource string
	bodySource string
	functions  []FunctionMetadata
	procedures []ProcedureMetadata
}

func NewPackage(schema, name, specSource, bodySource string, funcs []FunctionMetadata, procs []ProcedureMetadata) PackageMetadata {
	return PackageMetadata{
		schema:     schema,
		name:       name,
		specSource: specSource,
		bodySource: bodySource,
		functions:  append([]FunctionMetadata(nil), funcs...),
		procedures: append([]ProcedureMetadata(nil), procs...),
	}
}

func (p PackageMetadata) Schema() string                { return p.schema }
func (p PackageMetadata) Name() string                   { return p.name }
func (p PackageMetadata) SpecSource() string             { return p.specSource }
func (p PackageMetadata) BodySource() string             { return p.bodySource }
func (p PackageMetadata) Functions() []FunctionMetadata  { return append([]FunctionMetadata(nil), p.functions...) }
func (p PackageMetadata) Procedures() []ProcedureMetadata {
	return append([]ProcedureMetadata(nil), p.procedures...)
}
func (p PackageMetadata) QualifiedName() string { return p.schema + "." + p.name }
