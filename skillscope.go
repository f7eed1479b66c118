// Package skillscope turns a spreadsheet of employee skill assessments
// into report views.
//
// Usage:
//
//	import "github.com/spektr-org/skillscope/engine"
//
//	records, err := helpers.LoadFile(ctx, "assessments.xlsx", schema.Default())
//	view := engine.NewSliceView(records)
//	result, err := engine.Execute(ctx, engine.ViewSpec{
//	    View:    engine.ViewFinal,
//	    Filters: engine.Filters{Competency: "Signalling"},
//	}, view, engine.WithAlertThreshold(5))
//
// The engine takes a ViewSpec and a RecordView (the loaded dataset) and
// returns render-ready output (chart series, table, totals). The dataset is
// never modified; every view is a fresh projection over it.
//
// Loading spreadsheets is handled by the helpers package, column mapping by
// the schema package. The engine never touches files or the network.
package skillscope
