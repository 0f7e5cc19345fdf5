// Package sheets defines the port for mirroring reports into a live
// spreadsheet.
package sheets

import (
	"context"

	"societyfund/internal/report"
)

// Publisher writes report plans into a spreadsheet, one sheet per section.
// Sheets that already exist are cleared and rewritten; other sheets are
// left alone.
type Publisher interface {
	Publish(ctx context.Context, plans ...report.Plan) error
}
