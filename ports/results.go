package ports

import (
	"context"

	"ordstat/domain/analysis"
	"ordstat/domain/core"
)

// ResultSink persists the exported result tables of a finished run. Consumers
// (reporting, visualization) read from whatever store the sink writes to; the
// core mandates lossless numeric round-trips, not a serialization format.
type ResultSink interface {
	// SaveTables persists the four result tables keyed by run id.
	SaveTables(ctx context.Context, runID core.RunID, tables analysis.ResultTables) error
}
