// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sayiza/orapgsync-sub012/pkg/connector"
	"github.com/Sayiza/orapgsync-sub012/pkg/constraintwriter"
	"github.com/Sayiza/orapgsync-sub012/pkg/dialect"
	"github.com/Sayiza/orapgsync-sub012/pkg/job"
	"github.com/Sayiza/orapgsync-sub012/pkg/model"
	"github.com/Sayiza/orapgsync-sub012/pkg/oraparse"
	"github.com/Sayiza/orapgsync-sub012/pkg/pipeline"
	"github.com/Sayiza/orapgsync-sub012/pkg/rewrite"
	"github.com/Sayiza/orapgsync-sub012/pkg/store"
	"github.com/Sayiza/orapgsync-sub012/pkg/tablewriter"
	"github.com/Sayiza/orapgsync-sub012/pkg/typeinfer"
	"github.com/Sayiza/orapgsync-sub012/pkg/verify"
	"github.com/Sayiza/orapgsync-sub012/pkg/viewwriter"
)

// stages builds the ordered pipeline every migrate run executes: extraction
// stages read the Oracle source into the store, write stages render and
// apply PostgreSQL DDL from what extraction put there, and the final
// verification stage reads the target catalog back to report what actually
// landed.
func stages(srcConn, tgtConn connector.Connection, sc scope) []pipeline.Stage {
	return []pipeline.Stage{
		extractSchemasStage(srcConn, sc),
		extractObjectTypesStage(srcConn),
		extractTablesStage(srcConn),
		extractViewsStage(srcConn),
		extractRoutinesStage(srcConn),
		writeObjectTypesStage(tgtConn),
		writeTablesStage(tgtConn),
		writeConstraintsStage(tgtConn),
		writeViewStubsStage(tgtConn),
		writeRoutineStubsStage(tgtConn),
		writeViewImplementationsStage(tgtConn),
		writeRoutineImplementationsStage(tgtConn),
		verifyStage(tgtConn),
	}
}

func extractSchemasStage(conn connector.Connection, sc scope) pipeline.Stage {
	return pipeline.Stage{
		Name: "extract-schemas",
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			j := job.NewExtractionJob("extract-schemas", "list Oracle schemas", func(ctx context.Context, sink job.ProgressSink) ([]model.Schema, error) {
				return extractSchemas(ctx, conn, sc)
			})
			schemas, err := j.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Source, Kind: store.KindSchemas}, schemas)
			return nil
		},
	}
}

func extractObjectTypesStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "extract-object-types",
		Requires: []store.Kind{store.KindSchemas},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			schemas, _ := store.Get2[[]model.Schema](st, store.Key{Side: store.Source, Kind: store.KindSchemas})
			j := job.NewExtractionJob("extract-object-types", "list user-defined composite types", func(ctx context.Context, sink job.ProgressSink) ([]model.ObjectDataType, error) {
				return extractObjectTypes(ctx, conn, userSchemaNames(schemas))
			})
			types, err := j.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Source, Kind: store.KindObjectTypes}, types)
			return nil
		},
	}
}

func extractTablesStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "extract-tables",
		Requires: []store.Kind{store.KindSchemas},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			schemas, _ := store.Get2[[]model.Schema](st, store.Key{Side: store.Source, Kind: store.KindSchemas})
			j := job.NewExtractionJob("extract-tables", "list tables, columns and constraints", func(ctx context.Context, sink job.ProgressSink) ([]model.TableMetadata, error) {
				return extractTables(ctx, conn, userSchemaNames(schemas))
			})
			tables, err := j.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Source, Kind: store.KindTables}, tables)
			return nil
		},
	}
}

func extractViewsStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "extract-views",
		Requires: []store.Kind{store.KindSchemas},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			schemas, _ := store.Get2[[]model.Schema](st, store.Key{Side: store.Source, Kind: store.KindSchemas})
			j := job.NewExtractionJob("extract-views", "list views and their stored query text", func(ctx context.Context, sink job.ProgressSink) ([]model.ViewMetadata, error) {
				return extractViews(ctx, conn, userSchemaNames(schemas))
			})
			views, err := j.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Source, Kind: store.KindViews}, views)
			return nil
		},
	}
}

func extractRoutinesStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "extract-routines",
		Requires: []store.Kind{store.KindSchemas},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			schemas, _ := store.Get2[[]model.Schema](st, store.Key{Side: store.Source, Kind: store.KindSchemas})
			j := job.NewExtractionJob("extract-routines", "parse standalone and packaged routine bodies", func(ctx context.Context, sink job.ProgressSink) (routines, error) {
				return extractRoutines(ctx, conn, userSchemaNames(schemas), func(format string, args ...any) {
					sink.Progress(-1, "extract-routines", fmt.Sprintf(format, args...))
				})
			})
			rs, err := j.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Source, Kind: store.KindRoutines}, rs)
			return nil
		},
	}
}

// knownTypeFromExtracted builds a dialect.KnownTypeChecker over the
// composite types extraction found, used while rendering columns/attributes
// that reference another user-defined type.
func knownTypeFromExtracted(types []model.ObjectDataType) dialect.KnownTypeChecker {
	known := make(map[string]bool, len(types))
	for _, t := range types {
		known[strings.ToLower(t.Schema())+"."+strings.ToLower(t.Name())] = true
	}
	return func(owner, name string) bool {
		return known[strings.ToLower(owner)+"."+strings.ToLower(name)]
	}
}

func writeObjectTypesStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "write-object-types",
		Requires: []store.Kind{store.KindObjectTypes},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			types, _ := store.Get2[[]model.ObjectDataType](st, store.Key{Side: store.Source, Kind: store.KindObjectTypes})
			knownType := knownTypeFromExtracted(types)

			wj := job.NewWriteJob("write-object-types", "create composite types", func(ctx context.Context, sink job.ProgressSink) (model.Result, error) {
				result := applyDDL(ctx, conn, "write-object-types", types,
					func(t model.ObjectDataType) string { return t.QualifiedName() },
					func(t model.ObjectDataType) (string, error) { return tablewriter.ObjectTypeDDL(t, knownType) },
					sink)
				return result, nil
			})
			result, err := wj.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Target, Kind: store.KindObjectTypes}, result)
			return nil
		},
	}
}

func writeTablesStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "write-tables",
		Requires: []store.Kind{store.KindTables},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			tables, _ := store.Get2[[]model.TableMetadata](st, store.Key{Side: store.Source, Kind: store.KindTables})
			types, _ := store.Get2[[]model.ObjectDataType](st, store.Key{Side: store.Source, Kind: store.KindObjectTypes})
			knownType := knownTypeFromExtracted(types)

			wj := job.NewWriteJob("write-tables", "create tables", func(ctx context.Context, sink job.ProgressSink) (model.Result, error) {
				result := applyDDL(ctx, conn, "write-tables", tables,
					func(t model.TableMetadata) string { return t.QualifiedName() },
					func(t model.TableMetadata) (string, error) { return tablewriter.TableDDL(t, knownType) },
					sink)
				return result, nil
			})
			result, err := wj.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Target, Kind: store.KindTables}, result)
			return nil
		},
	}
}

func writeConstraintsStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "write-constraints",
		Requires: []store.Kind{store.KindTables},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			tables, _ := store.Get2[[]model.TableMetadata](st, store.Key{Side: store.Source, Kind: store.KindTables})
			var constraints []model.ConstraintMetadata
			for _, t := range tables {
				constraints = append(constraints, t.Constraints()...)
			}

			wj := job.NewWriteJob("write-constraints", "apply constraints and FK indexes", func(ctx context.Context, sink job.ProgressSink) (model.Result, error) {
				return constraintwriter.Write(ctx, conn, constraints, sink)
			})
			result, err := wj.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Target, Kind: store.KindConstraints}, result)
			return nil
		},
	}
}

func writeViewStubsStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "write-view-stubs",
		Requires: []store.Kind{store.KindViews},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			views, _ := store.Get2[[]model.ViewMetadata](st, store.Key{Side: store.Source, Kind: store.KindViews})

			wj := job.NewWriteJob("write-view-stubs", "create empty typed view stubs", func(ctx context.Context, sink job.ProgressSink) (model.Result, error) {
				result := applyDDL(ctx, conn, "write-view-stubs", views,
					func(v model.ViewMetadata) string { return v.QualifiedName() },
					func(v model.ViewMetadata) (string, error) { return viewwriter.StubDDL(v), nil },
					sink)
				return result, nil
			})
			result, err := wj.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Target, Kind: store.KindViewStubs}, result)
			return nil
		},
	}
}

func writeRoutineStubsStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "write-routine-stubs",
		Requires: []store.Kind{store.KindRoutines},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			rs, _ := store.Get2[routines](st, store.Key{Side: store.Source, Kind: store.KindRoutines})
			items := flattenRoutineSignatures(rs)
			r := rewrite.New(typeinfer.Result{}, nil)

			wj := job.NewWriteJob("write-routine-stubs", "create placeholder routine bodies", func(ctx context.Context, sink job.ProgressSink) (model.Result, error) {
				result := applyDDL(ctx, conn, "write-routine-stubs", items,
					func(it routineItem) string { return it.objectName },
					func(it routineItem) (string, error) { return r.RenderStub(it.schema, it.sig, it.objectName) },
					sink)
				return result, nil
			})
			result, err := wj.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Target, Kind: store.KindRoutineStubs}, result)
			return nil
		},
	}
}

func writeViewImplementationsStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "write-view-implementations",
		Requires: []store.Kind{store.KindViewStubs},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			views, _ := store.Get2[[]model.ViewMetadata](st, store.Key{Side: store.Source, Kind: store.KindViews})
			tables, _ := store.Get2[[]model.TableMetadata](st, store.Key{Side: store.Source, Kind: store.KindTables})
			catalog := newTableCatalog(tables)
			p := oraparse.NewParser()

			implementable := make([]model.ViewMetadata, 0, len(views))
			for _, v := range views {
				if v.HasSQL() {
					implementable = append(implementable, v)
				}
			}

			wj := job.NewWriteJob("write-view-implementations", "attach transpiled SELECT to each view", func(ctx context.Context, sink job.ProgressSink) (model.Result, error) {
				result := applyDDL(ctx, conn, "write-view-implementations", implementable,
					func(v model.ViewMetadata) string { return v.QualifiedName() },
					func(v model.ViewMetadata) (string, error) {
						stmt, err := p.ParseSelect(v.SQL())
						if err != nil {
							return "", err
						}
						types := typeinfer.Infer(stmt, catalog)
						r := rewrite.New(types, nil)
						translated, err := r.Render(stmt, v.QualifiedName())
						if err != nil {
							return "", err
						}
						return viewwriter.ImplementationDDL(v, translated), nil
					},
					sink)
				return result, nil
			})
			result, err := wj.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Target, Kind: store.KindViews}, result)
			return nil
		},
	}
}

// routineItem pairs a routine's rendering inputs so both the stub and
// implementation stages can share flattenRoutineSignatures/objectName
// logic for standalone and packaged functions/procedures alike.
type routineItem struct {
	schema     string
	objectName string
	sig        oraparse.RoutineSignature
}

func flattenRoutineSignatures(rs routines) []routineItem {
	var items []routineItem
	for _, f := range rs.functions {
		items = append(items, functionItem(f))
	}
	for _, p := range rs.procedures {
		items = append(items, procedureItem(p))
	}
	for _, pkg := range rs.packages {
		for _, f := range pkg.Functions() {
			items = append(items, functionItem(f))
		}
		for _, p := range pkg.Procedures() {
			items = append(items, procedureItem(p))
		}
	}
	return items
}

func functionItem(f model.FunctionMetadata) routineItem {
	return routineItem{
		schema:     f.Schema(),
		objectName: routineObjectName(f.Schema(), f.Package(), f.Name()),
		sig: oraparse.RoutineSignature{
			Kind:       oraparse.KindFunction,
			Name:       routineName(f.Package(), f.Name()),
			Params:     signatureParams(f.Params()),
			ReturnType: f.ReturnType(),
		},
	}
}

func procedureItem(p model.ProcedureMetadata) routineItem {
	return routineItem{
		schema:     p.Schema(),
		objectName: routineObjectName(p.Schema(), p.Package(), p.Name()),
		sig: oraparse.RoutineSignature{
			Kind:   oraparse.KindProcedure,
			Name:   routineName(p.Package(), p.Name()),
			Params: signatureParams(p.Params()),
		},
	}
}

// routineObjectName flattens a possibly-packaged routine into a single
// PostgreSQL function/procedure name: PostgreSQL has no package concept, so
// a packaged member's package name is folded into its own name rather than
// dropped, keeping members of different packages from colliding.
func routineObjectName(schema, pkg, name string) string {
	return schema + "." + routineName(pkg, name)
}

func routineName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "__" + name
}

func signatureParams(params []model.Parameter) []oraparse.SignatureParam {
	out := make([]oraparse.SignatureParam, len(params))
	for i, p := range params {
		out[i] = oraparse.SignatureParam{Name: p.Name, Direction: paramDirectionText(p.Direction), Type: p.DeclaredType}
	}
	return out
}

func paramDirectionText(d model.ParamDirection) string {
	switch d {
	case model.Out:
		return "OUT"
	case model.InOut:
		return "IN OUT"
	default:
		return "IN"
	}
}

func writeRoutineImplementationsStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "write-routine-implementations",
		Requires: []store.Kind{store.KindRoutineStubs},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			rs, _ := store.Get2[routines](st, store.Key{Side: store.Source, Kind: store.KindRoutines})
			r := rewrite.New(typeinfer.Result{}, nil)

			type renderable struct {
				objectName string
				schema     string
				ast        *oraparse.RoutineAST
			}
			var items []renderable
			p := oraparse.NewParser()
			collect := func(schema, pkg, name, source string, isFunc bool) {
				var ast *oraparse.RoutineAST
				var err error
				if isFunc {
					ast, err = p.ParseFunctionBody(source)
				} else {
					ast, err = p.ParseProcedureBody(source)
				}
				if err != nil {
					sink.Progress(-1, "write-routine-implementations", "failed to re-parse "+routineObjectName(schema, pkg, name)+": "+err.Error())
					return
				}
				items = append(items, renderable{objectName: routineObjectName(schema, pkg, name), schema: schema, ast: ast})
			}
			for _, f := range rs.functions {
				collect(f.Schema(), f.Package(), f.Name(), f.Source(), true)
			}
			for _, proc := range rs.procedures {
				collect(proc.Schema(), proc.Package(), proc.Name(), proc.Source(), false)
			}
			for _, pkg := range rs.packages {
				for _, f := range pkg.Functions() {
					collect(f.Schema(), f.Package(), f.Name(), f.Source(), true)
				}
				for _, proc := range pkg.Procedures() {
					collect(proc.Schema(), proc.Package(), proc.Name(), proc.Source(), false)
				}
			}

			wj := job.NewWriteJob("write-routine-implementations", "translate and attach routine bodies", func(ctx context.Context, sink job.ProgressSink) (model.Result, error) {
				result := applyDDL(ctx, conn, "write-routine-implementations", items,
					func(it renderable) string { return it.objectName },
					func(it renderable) (string, error) { return r.RenderRoutine(it.schema, it.ast, it.objectName) },
					sink)
				return result, nil
			})
			result, err := wj.Execute(ctx, sink)
			if err != nil {
				return err
			}
			st.Put(store.Key{Side: store.Target, Kind: store.KindRoutines}, result)
			return nil
		},
	}
}

func verifyStage(conn connector.Connection) pipeline.Stage {
	return pipeline.Stage{
		Name:     "verify",
		Requires: []store.Kind{store.KindTables},
		Run: func(ctx context.Context, st *store.Store, sink job.ProgressSink) error {
			tables, _ := store.Get2[[]model.TableMetadata](st, store.Key{Side: store.Source, Kind: store.KindTables})
			views, _ := store.Get2[[]model.ViewMetadata](st, store.Key{Side: store.Source, Kind: store.KindViews})
			rs, _ := store.Get2[routines](st, store.Key{Side: store.Source, Kind: store.KindRoutines})

			v := verify.New(conn)

			tableNames := make([]verify.QualifiedName, len(tables))
			for i, t := range tables {
				tableNames[i] = verify.QualifiedName{Schema: t.Schema(), Name: t.Name()}
			}
			viewNames := make([]verify.QualifiedName, len(views))
			for i, vw := range views {
				viewNames[i] = verify.QualifiedName{Schema: vw.Schema(), Name: vw.Name()}
			}
			routineNames := routineQualifiedNames(rs)

			findings, err := collectFindings(ctx, v, tableNames, viewNames, routineNames)
			if err != nil {
				return err
			}

			st.Put(store.Key{Side: store.Target, Kind: store.KindVerification}, findings)
			sink.Progress(-1, "verify", summarizeFindings(findings))
			return nil
		},
	}
}

func routineQualifiedNames(rs routines) []verify.QualifiedName {
	var out []verify.QualifiedName
	add := func(schema, pkg, name string) {
		parts := strings.SplitN(routineObjectName(schema, pkg, name), ".", 2)
		out = append(out, verify.QualifiedName{Schema: parts[0], Name: parts[1]})
	}
	for _, f := range rs.functions {
		add(f.Schema(), f.Package(), f.Name())
	}
	for _, p := range rs.procedures {
		add(p.Schema(), p.Package(), p.Name())
	}
	for _, pkg := range rs.packages {
		for _, f := range pkg.Functions() {
			add(f.Schema(), f.Package(), f.Name())
		}
		for _, p := range pkg.Procedures() {
			add(p.Schema(), p.Package(), p.Name())
		}
	}
	return out
}

func collectFindings(ctx context.Context, v *verify.Verifier, tables, views, routineNames []verify.QualifiedName) ([]verify.Finding, error) {
	var findings []verify.Finding

	t, err := v.Tables(ctx, tables)
	if err != nil {
		return nil, err
	}
	findings = append(findings, t...)

	vw, err := v.Views(ctx, views)
	if err != nil {
		return nil, err
	}
	findings = append(findings, vw...)

	r, err := v.Routines(ctx, routineNames)
	if err != nil {
		return nil, err
	}
	findings = append(findings, r...)

	return findings, nil
}

func summarizeFindings(findings []verify.Finding) string {
	var missing, stub, implemented int
	for _, f := range findings {
		switch f.Status {
		case verify.StatusMissing:
			missing++
		case verify.StatusStub:
			stub++
		case verify.StatusImplemented:
			implemented++
		}
	}
	return fmt.Sprintf("%d implemented, %d stub, %d missing", implemented, stub, missing)
}

